package hsn

// Version is stamped at build time with -ldflags "-X github.com/aretw0/hsn.Version=...".
var Version = "0.1.0-dev"
