// Package file keeps user state under the config directory (~/.ailab by
// default): config.toml through ConfigStore, and prompt overrides in
// prompts/*.txt through PromptStore, which reloads them when they change.
package file
