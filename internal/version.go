package internal

// Version is the wordforge release version.
const Version = "0.1.0"
