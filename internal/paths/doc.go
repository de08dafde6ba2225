// Package paths resolves the directories ccdir reads and writes.
//
// It wraps github.com/adrg/xdg so the config, data and cache locations
// follow the XDG Base Directory conventions on Linux and the native
// equivalents on macOS and Windows:
//
//	paths.ConfigFile()      // ~/.config/ccdir/config.yaml
//	paths.SourcesCacheDir() // ~/.cache/ccdir/sources
//	paths.PublishDir()      // ~/.local/share/ccdir/publish
package paths
