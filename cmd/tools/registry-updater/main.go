// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"hospital-ops/internal/common/validation"
	"hospital-ops/pkg/registry"
)

var registryPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{addCmd, updateCmd, validateCmd, listCmd, exportCmd} {
		fs.StringVar(&registryPath, "path", "configs/templates.json", "Path to registry file")
	}

	// Add command flags
	idAdd := addCmd.String("id", "", "Template ID (e.g., alert.discharge)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., Discharge Notice)")
	description := addCmd.String("description", "", "Description")
	notificationType := addCmd.String("notificationType", "", "Notification type whose metadata this template owns (optional)")
	category := addCmd.String("category", "", "Notification category (optional)")
	version := addCmd.String("version", "1.0.0", "Version")
	tags := addCmd.String("tags", "", "Comma-separated tags")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Template ID to update")
	field := updateCmd.String("field", "", "Field to update (version, displayName, description, category, notificationType)")
	value := updateCmd.String("value", "", "New value for the field")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *description == "" {
			fmt.Println("Error: id, displayName and description are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		tmpl := registry.Template{
			ID:               *idAdd,
			DisplayName:      *displayName,
			Description:      *description,
			Version:          *version,
			NotificationType: *notificationType,
			Category:         *category,
			InputSchema:      map[string]interface{}{"type": "object"},
			Tags:             splitTags(*tags),
		}
		if err := addTemplate(tmpl); err != nil {
			fmt.Printf("Error adding template: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added template: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateTemplate(*idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating template: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated template %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateRegistry(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "list":
		listCmd.Parse(os.Args[2:])
		if err := listTemplates(); err != nil {
			fmt.Printf("Error listing templates: %v\n", err)
			os.Exit(1)
		}

	case "export":
		exportCmd.Parse(os.Args[2:])
		if err := exportDefault(); err != nil {
			fmt.Printf("Error exporting registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote built-in registry to %s\n", registryPath)

	case "help":
		fallthrough
	default:
		help()
	}
}

// loadOrDefault starts from the built-in registry when the file does not
// exist yet.
func loadOrDefault() (*registry.TemplateRegistry, error) {
	reg, err := registry.LoadRegistry(registryPath)
	if err == nil {
		return reg, nil
	}
	if os.IsNotExist(err) {
		return registry.Default()
	}
	return nil, fmt.Errorf("failed to load registry: %w", err)
}

func addTemplate(tmpl registry.Template) error {
	reg, err := loadOrDefault()
	if err != nil {
		return err
	}
	if _, exists := reg.Find(tmpl.ID); exists {
		return fmt.Errorf("template with ID %s already exists", tmpl.ID)
	}

	reg.Templates = append(reg.Templates, tmpl)
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return registry.Save(registryPath, reg)
}

func updateTemplate(id, field, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	tmpl, ok := reg.Find(id)
	if !ok {
		return fmt.Errorf("template with ID %s not found", id)
	}

	switch field {
	case "version":
		tmpl.Version = value
	case "displayName":
		tmpl.DisplayName = value
	case "description":
		tmpl.Description = value
	case "category":
		tmpl.Category = value
	case "notificationType":
		tmpl.NotificationType = value
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return registry.Save(registryPath, reg)
}

// validateRegistry runs the structural checks and then compiles every
// schema the way the service does at startup.
func validateRegistry() error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Check(); err != nil {
		return err
	}
	if _, err := validation.NewValidator(reg); err != nil {
		return err
	}

	fmt.Printf("Validated %d templates (registry version %s)\n", len(reg.Templates), reg.Version)
	return nil
}

func listTemplates() error {
	reg, err := loadOrDefault()
	if err != nil {
		return err
	}

	templates := append([]registry.Template(nil), reg.Templates...)
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })

	fmt.Printf("%-22s %-18s %-8s %s\n", "ID", "TYPE", "VERSION", "DISPLAY NAME")
	for _, t := range templates {
		nt := t.NotificationType
		if nt == "" {
			nt = "-"
		}
		fmt.Printf("%-22s %-18s %-8s %s\n", t.ID, nt, t.Version, t.DisplayName)
	}
	return nil
}

func exportDefault() error {
	reg, err := registry.Default()
	if err != nil {
		return err
	}
	return registry.Save(registryPath, reg)
}

func splitTags(s string) []string {
	out := []string{}
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func help() {
	fmt.Println("Usage: registry-updater <command> [flags]")
	fmt.Println("Commands:")
	fmt.Println("  add       Add a new template")
	fmt.Println("  update    Update a field of an existing template")
	fmt.Println("  validate  Check structure and compile every schema")
	fmt.Println("  list      List templates")
	fmt.Println("  export    Write the built-in registry to -path")
	fmt.Println("  help      Show this help")
}
