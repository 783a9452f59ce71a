/*
Package config loads dropzip settings from HCL, YAML, TOML or JSON.

	                 +-------------+
	                 |   Config    |
	                 | (Settings)  |
	                 +------+------+
	                        |
	     +---------+--------+--------+---------+
	     |         |                 |         |
	+----+---+ +---+----+       +----+---+ +---+----+
	|  HCL   | |  YAML  |       |  TOML  | |  JSON  |
	| Parser | | Parser |       | Parser | | Parser |
	+--------+ +--------+       +--------+ +--------+

🎯 Purpose:
- Picks a parser by file extension
- Normalizes paths and fills defaults
- Rejects settings the action cannot run with

🔄 Flow:
1. LoadFile reads and parses the file
2. The CLI applies flag overrides
3. Validate expands ~, cleans paths and sets defaults

📦 Blocks:
- destination: dir and overwrite, both optional in the file. --dest can supply dir
- archive: name, compression (deflate or store) and exclude patterns
- hooks: after_transfer and clicked shell snippets
- watch: inbox and debounce
- log: file, max_size_mb and max_backups

A missing archive.exclude means the default metadata patterns. An explicit
empty list turns filtering off.

HCL files can read the environment:

	destination {
	  dir = "${env.HOME}/Dropbox/Public"
	}

🔍 Example:

	cfg, err := config.Load(ctx, ".dropzip.hcl")
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	fmt.Println(cfg) // bundle.zip -> /Users/me/Dropbox/Public (keep)
*/
package config
