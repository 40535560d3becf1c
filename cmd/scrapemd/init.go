package main

import (
	"fmt"

	"github.com/akarpinski/scrapemd"
	"github.com/akarpinski/scrapemd/yaml"
)

// Run executes the init command, writing the default config file.
func (c *InitCmd) Run(deps *Dependencies) error {
	if err := yaml.WriteDefault(deps.ConfigPath, c.Force); err != nil {
		if scrapemd.ErrorCode(err) == scrapemd.ECONFLICT {
			fmt.Fprintf(deps.Stderr, "Hint: Use --force to overwrite\n")
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapemd.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Created config file at %s\n", deps.ConfigPath)
	return nil
}
