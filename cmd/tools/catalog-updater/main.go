// cmd/tools/catalog-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"jobboard-workers/internal/models"
	"jobboard-workers/pkg/catalog"
)

var catalogPath string

func main() {
	questionCmd := flag.NewFlagSet("add-question", flag.ExitOnError)
	employerCmd := flag.NewFlagSet("add-employer", flag.ExitOnError)
	removeCmd := flag.NewFlagSet("remove-question", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{questionCmd, employerCmd, removeCmd, validateCmd} {
		fs.StringVar(&catalogPath, "path", "configs/catalog.json", "Path to catalog file")
	}

	text := questionCmd.String("text", "", "Question text")
	email := employerCmd.String("email", "", "Employer account email")
	company := employerCmd.String("company", "", "Company name shown on postings")
	removeText := removeCmd.String("text", "", "Question text to remove")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add-question":
		questionCmd.Parse(os.Args[2:])
		if strings.TrimSpace(*text) == "" {
			fmt.Println("Error: text is required for add-question.")
			questionCmd.Usage()
			os.Exit(1)
		}
		err = update(func(c *catalog.Catalog) error { return addQuestion(c, *text) })
		if err == nil {
			fmt.Printf("Added question: %s\n", strings.TrimSpace(*text))
		}

	case "remove-question":
		removeCmd.Parse(os.Args[2:])
		err = update(func(c *catalog.Catalog) error { return removeQuestion(c, *removeText) })
		if err == nil {
			fmt.Printf("Removed question: %s\n", *removeText)
		}

	case "add-employer":
		employerCmd.Parse(os.Args[2:])
		if *email == "" || *company == "" {
			fmt.Println("Error: email and company are required for add-employer.")
			employerCmd.Usage()
			os.Exit(1)
		}
		err = update(func(c *catalog.Catalog) error {
			c.Employers = append(c.Employers, models.EmployerSeed{Email: *email, Company: *company})
			return nil
		})
		if err == nil {
			fmt.Printf("Added employer: %s (%s)\n", *email, *company)
		}

	case "validate":
		validateCmd.Parse(os.Args[2:])
		var c *catalog.Catalog
		if c, err = catalog.Load(catalogPath); err == nil {
			err = c.Validate()
		}
		if err == nil {
			fmt.Printf("Catalog validation passed: %d questions, %d employers.\n", len(c.Questions), len(c.Employers))
		}

	default:
		help()
		return
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// update loads the catalog (or the defaults when the file does not exist yet),
// applies fn, validates and saves.
func update(fn func(c *catalog.Catalog) error) error {
	c, err := catalog.Load(catalogPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		c = catalog.Default()
	}

	if err := fn(c); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	return catalog.Save(c, catalogPath)
}

func addQuestion(c *catalog.Catalog, text string) error {
	text = strings.TrimSpace(text)
	for _, q := range c.Questions {
		if strings.EqualFold(strings.TrimSpace(q), text) {
			return fmt.Errorf("question already exists: %q", text)
		}
	}
	c.Questions = append(c.Questions, text)
	return nil
}

func removeQuestion(c *catalog.Catalog, text string) error {
	for i, q := range c.Questions {
		if q == text {
			c.Questions = append(c.Questions[:i], c.Questions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("question not found: %q", text)
}

func help() {
	fmt.Println("Usage: catalog-updater <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  add-question     Add a seeded question template")
	fmt.Println("  remove-question  Remove a seeded question template")
	fmt.Println("  add-employer     Map an employer email to a company")
	fmt.Println("  validate         Validate the catalog file")
	fmt.Println("")
	fmt.Println("All commands accept -path (default configs/catalog.json).")
}
