package handlers

import (
	"github.com/rplus-dev/rplus/cmd/rplusctl/client"
	"github.com/rplus-dev/rplus/cmd/rplusctl/display"
	"github.com/rplus-dev/rplus/cmd/rplusctl/utils"
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/validate"
	"github.com/spf13/cobra"
)

// HandleSettingsList lists every setting.
func HandleSettingsList(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	entries, err := client.CreateAPIClient().GetSettings()
	if err != nil {
		return explain(err)
	}

	display.DisplaySettings(entries)
	logging.Success("Successfully retrieved %d settings", len(entries))
	return nil
}

// HandleSettingsGet shows one setting.
func HandleSettingsGet(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	key := args[0]
	if err := validate.SettingKeyFormat(key); err != nil {
		return err
	}

	change, err := client.CreateAPIClient().GetSetting(key)
	if err != nil {
		return explain(err)
	}

	display.DisplaySetting(*change)
	return nil
}

// HandleSettingsSet stores a setting. "null" resets it to its default.
func HandleSettingsSet(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	key := args[0]
	if err := validate.SettingKeyFormat(key); err != nil {
		return err
	}
	value := utils.ParseSettingValue(args[1])

	change, err := client.CreateAPIClient().SetSetting(key, value)
	if err != nil {
		return explain(err)
	}

	display.DisplaySetting(*change)
	logging.Success("Updated %s", key)
	return nil
}
