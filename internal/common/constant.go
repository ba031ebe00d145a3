package common

// AppName is used for the data directory and in ephemeral handle URLs.
const AppName = "clipnote"

// HandleScheme prefixes every ephemeral access handle issued by the client.
const HandleScheme = "blob:" + AppName + "/"
