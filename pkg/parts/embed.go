package parts

import _ "embed"

//go:embed defaults.toml
var defaultsTOML []byte
