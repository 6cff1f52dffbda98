package clearance

// Version is overridden at build time with -ldflags "-X github.com/aretw0/clearance.Version=...".
var Version = "dev"
