package version

// Version is overridden at build time via -ldflags "-X architect/internal/shared/version.Version=...".
var Version = "1.2.0"
