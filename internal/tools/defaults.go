package tools

// NewResearchRegistry builds the fixed capability set offered to research
// workers. This is the only place tools are registered.
func NewResearchRegistry(client *TavilyClient) (*Registry, error) {
	return NewRegistry(
		NewWebSearchTool(client),
		NewStatuteSearchTool(client),
		NewCaseLawSearchTool(client),
		NewIdentityTool(),
		NewThinkTool(),
	)
}
