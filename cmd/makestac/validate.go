package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/EDITO-Infra/makestac/model"
	"github.com/EDITO-Infra/makestac/source"
	"github.com/EDITO-Infra/makestac/stac"
)

func validateAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("Usage: makestac validate <item.json>", 1)
	}
	path := c.Args().Get(0)

	data, err := os.ReadFile(path)
	if err != nil {
		openErr := &source.SourceOpenError{URI: path, Err: err}
		return cli.NewExitError(errorClass(openErr)+": "+openErr.Error(), 1)
	}
	var item model.StacItem
	if err = json.Unmarshal(data, &item); err != nil {
		parseErr := &stac.StacValidationError{
			Violations: []string{"not a STAC item JSON document: " + err.Error()},
		}
		return cli.NewExitError(errorClass(parseErr)+": "+parseErr.Error(), 1)
	}

	if err = stac.ValidateItem(&item); err != nil {
		var validationErr *stac.StacValidationError
		if errors.As(err, &validationErr) {
			fmt.Fprintf(os.Stderr, "%s fails validation with %d violation(s):\n", path, len(validationErr.Violations))
			for _, violation := range validationErr.Violations {
				fmt.Fprintln(os.Stderr, "  - "+violation)
			}
		}
		return cli.NewExitError(errorClass(err)+": "+err.Error(), 1)
	}

	fmt.Printf("%s is a valid STAC item\n", path)
	return nil
}
