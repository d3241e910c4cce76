package shrub

// Version is the release of this module. Builds may override it with -ldflags "-X".
var Version = "0.1.0"
