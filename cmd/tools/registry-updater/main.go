// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"farmers-connect/pkg/registry"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		help(out)
		return fmt.Errorf("command is required")
	}

	switch args[0] {
	case "init":
		cmd := flag.NewFlagSet("init", flag.ContinueOnError)
		path := cmd.String("path", "configs/form-registry.json", "Path to registry file")
		if err := cmd.Parse(args[1:]); err != nil {
			return err
		}
		if _, err := os.Stat(*path); err == nil {
			return fmt.Errorf("registry %s already exists", *path)
		}
		reg := registry.Default()
		reg.LastUpdated = time.Now().Format(time.RFC3339)
		if err := registry.Save(reg, *path); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote built-in forms to %s\n", *path)

	case "add":
		cmd := flag.NewFlagSet("add", flag.ContinueOnError)
		path := cmd.String("path", "configs/form-registry.json", "Path to registry file")
		id := cmd.String("id", "", "Form ID (e.g., yield-estimate)")
		displayName := cmd.String("displayName", "", "Display Name (e.g., Yield Estimate)")
		endpoint := cmd.String("endpoint", "", "Endpoint path (e.g., /api/yield)")
		convention := cmd.String("convention", registry.ConventionHTTPStatus, "Success convention (boolean_flag, http_status)")
		messageField := cmd.String("messageField", "message", "Response field shown on success")
		errorField := cmd.String("errorField", "error", "Response field shown on failure")
		fallback := cmd.String("fallback", "", "Message shown when the failure carries no error field")
		if err := cmd.Parse(args[1:]); err != nil {
			return err
		}
		if *id == "" || *displayName == "" || *endpoint == "" || *fallback == "" {
			cmd.Usage()
			return fmt.Errorf("id, displayName, endpoint and fallback are required for add")
		}

		reg, err := registry.LoadRegistry(*path)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		err = reg.Add(registry.FormDefinition{
			ID:           *id,
			DisplayName:  *displayName,
			Endpoint:     *endpoint,
			Convention:   *convention,
			MessageField: *messageField,
			ErrorField:   *errorField,
			Fallback:     *fallback,
			// fields are edited in the file; a placeholder keeps the registry valid
			Fields: []registry.FieldDefinition{{Name: "value", Label: "Value", Kind: "text", Required: true}},
		})
		if err != nil {
			return err
		}
		if err := reg.Validate(); err != nil {
			return err
		}
		if err := registry.Save(reg, *path); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added form: %s\n", *id)

	case "update":
		cmd := flag.NewFlagSet("update", flag.ContinueOnError)
		path := cmd.String("path", "configs/form-registry.json", "Path to registry file")
		id := cmd.String("id", "", "Form ID to update")
		field := cmd.String("field", "", "Field to update (displayName, endpoint, convention, fallback, ...)")
		value := cmd.String("value", "", "New value for the field")
		if err := cmd.Parse(args[1:]); err != nil {
			return err
		}
		if *id == "" || *field == "" || *value == "" {
			cmd.Usage()
			return fmt.Errorf("id, field, and value are required for update")
		}

		reg, err := registry.LoadRegistry(*path)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		if err := reg.Update(*id, *field, *value); err != nil {
			return err
		}
		if err := registry.Save(reg, *path); err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated form %s, field %s to %s\n", *id, *field, *value)

	case "validate", "list":
		cmd := flag.NewFlagSet(args[0], flag.ContinueOnError)
		path := cmd.String("path", "configs/form-registry.json", "Path to registry file")
		if err := cmd.Parse(args[1:]); err != nil {
			return err
		}
		reg, err := registry.LoadRegistry(*path)
		if err != nil {
			return fmt.Errorf("registry validation failed: %w", err)
		}
		if args[0] == "list" {
			for _, f := range reg.Forms {
				fmt.Fprintf(out, "%-22s %-14s %-24s %d fields\n", f.ID, f.Convention, f.Endpoint, len(f.Fields))
			}
			return nil
		}
		fmt.Fprintf(out, "Registry validation passed. Found %d forms.\n", len(reg.Forms))

	case "help":
		help(out)

	default:
		help(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func help(out io.Writer) {
	fmt.Fprintln(out, `
Usage: registry-updater <command> [flags]

Commands:
  init      Write the built-in forms to a new registry file
  add       Add a new form to the registry
  update    Update an existing form's field
  validate  Validate the registry file
  list      List the forms in the registry
  help      Show this help message

Examples:
  registry-updater init -path configs/form-registry.json
  registry-updater add -id yield-estimate -displayName "Yield Estimate" -endpoint /api/yield -fallback "Failed to estimate yield"
  registry-updater update -id crop-recommendation -field fallback -value "No recommendation available"
  registry-updater validate -path configs/form-registry.json

Use 'registry-updater <command> -h' for more information about a command.`)
}
