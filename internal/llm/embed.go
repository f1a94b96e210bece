package llm

import _ "embed"

// Embeds for prompts and completion settings used by the llm package.

//go:embed prompts/program-system.txt
var programSystem string

//go:embed prompts/program-user.txt
var programUser string

//go:embed prompts/recommendation-system.txt
var recommendationSystem string

//go:embed prompts/recommendation-user.txt
var recommendationUser string

//go:embed prompts/analysis-system.txt
var analysisSystem string

//go:embed prompts/analysis-user.txt
var analysisUser string

//go:embed operations.yaml
var operationsYAML []byte
