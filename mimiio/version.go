package mimiio

// Version is the library version string returned by mimi_version().
const Version = "2.0.0-go"
