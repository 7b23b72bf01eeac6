package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dayuer/chatpacer/internal/config"
	"github.com/spf13/cobra"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize chatpacer configuration and a sample rule file",
	RunE:  runOnboard,
}

func init() {
	rootCmd.AddCommand(onboardCmd)
}

// sampleRules seeds responses.json. Keys are rule categories.
var sampleRules = map[string][]string{
	"hi":     {"hey", "hi there", "yo"},
	"bye":    {"later!", "see ya", "bye"},
	"thanks": {"np", "no problem", "anytime"},
	"yes":    {"nice", "cool"},
	"no":     {"fair enough", "ok"},
	"maybe":  {"let me know"},
	"good":   {"love that", "nice!"},
	"bad":    {"oh no", "that sucks"},
}

func runOnboard(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.GetConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config already exists at %s\n", path)
	} else {
		if err := config.Save(config.DefaultConfig(), path); err != nil {
			return fmt.Errorf("creating config: %w", err)
		}
		fmt.Printf("✓ Created config at %s\n", path)
	}

	rulesPath := cfg.Responder.ResponsesFile
	if rulesPath == "" {
		rulesPath = config.DefaultConfig().Responder.ResponsesFile
	}
	if strings.Contains(rulesPath, "://") {
		fmt.Printf("Rules are read from %s, skipping sample file\n", rulesPath)
	} else if _, err := os.Stat(rulesPath); os.IsNotExist(err) {
		data, err := json.MarshalIndent(sampleRules, "", "  ")
		if err != nil {
			return err
		}
		if dir := filepath.Dir(rulesPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
		if err := os.WriteFile(rulesPath, data, 0644); err != nil {
			return fmt.Errorf("creating rules: %w", err)
		}
		fmt.Printf("✓ Created sample rules at %s\n", rulesPath)
	}

	fmt.Println("\n🤖 chatpacer is ready!")
	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Put USER_TOKEN and CHANNEL_ID in .env or in %s\n", path)
	fmt.Println("  2. Check: chatpacer guilds")
	fmt.Println("  3. Export: chatpacer export --format html")
	fmt.Println("  4. Respond: chatpacer respond")
	return nil
}
