// Package confloader layers imgcarve settings with koanf and watches files
// for change.
//
// Load stacks Sources over a struct pre-filled with defaults; each later
// Source overrides the ones before it. imgcarve stacks them as
//
//	confloader.Load(cfg, confloader.File(path), confloader.Env(confloader.EnvPrefix), confloader.Values(flags))
//
// so explicitly set flags beat IMGCARVE_* variables, which beat the YAML
// file.
//
// Watcher is the fsnotify loop behind watch mode. It watches the parent
// directory of each file, so editors that replace a file by rename are
// still seen, and debounces bursts of writes into one notification.
package confloader
