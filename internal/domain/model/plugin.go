package model

// Plugin is an installed Jenkins plugin, as listed by the plugin manager.
type Plugin struct {
	ShortName string
	LongName  string
	Version   string
	Active    bool
	Enabled   bool
}
