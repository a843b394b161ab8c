// Copyright © 2024 The ELPS authors

// Package docs embeds the DRL language guide for use by the CLI.
package docs

import _ "embed"

//go:embed drl.md
var LangGuide string
