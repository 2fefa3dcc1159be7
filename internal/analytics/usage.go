// Package analytics reports opt-out, PII-free usage events so the
// maintainers can see which commands and output formats get used.
package analytics

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/posthog/posthog-go"
)

const (
	CheckStarted   = "pythaw:check_started"
	CheckCompleted = "pythaw:check_completed"
	CheckFailed    = "pythaw:check_failed"
)

// PublicKey is set at build time via -ldflags; an empty key disables
// reporting regardless of the user's opt-out preference.
var (
	PublicKey     string
	enableMetrics bool
	appVersion    string
)

func Init(disableMetrics bool) {
	enableMetrics = !disableMetrics
}

func SetVersion(version string) {
	appVersion = version
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pythaw"), nil
}

func createEnvFile() {
	dir, err := configDir()
	if err != nil {
		fmt.Println("Error getting user home directory:", err)
		return
	}
	envFile := filepath.Join(dir, ".env")
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			fmt.Println("Error creating directory:", err)
			return
		}
		env := map[string]string{"uuid": uuid.New().String()}
		if err := godotenv.Write(env, envFile); err != nil {
			fmt.Println("Error writing to .env file:", err)
		}
	}
}

// LoadEnvFile ensures a stable anonymous install id exists and loads it
// into the environment before any event is reported.
func LoadEnvFile() {
	createEnvFile()
	dir, err := configDir()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(dir, ".env"))
}

func ReportEvent(event string) {
	ReportEventWithProperties(event, nil)
}

// ReportEventWithProperties sends an event plus the given properties.
// Properties must never carry file paths, source snippets, or other
// information that could identify a user's codebase.
func ReportEventWithProperties(event string, properties map[string]interface{}) {
	if !enableMetrics || PublicKey == "" {
		return
	}

	disableGeoIP := false
	client, err := posthog.NewWithConfig(PublicKey, posthog.Config{
		Endpoint:     "https://us.i.posthog.com",
		DisableGeoIP: &disableGeoIP,
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer client.Close()

	props := posthog.NewProperties()
	props.Set("os", runtime.GOOS)
	props.Set("arch", runtime.GOARCH)
	props.Set("go_version", runtime.Version())
	if appVersion != "" {
		props.Set("pythaw_version", appVersion)
	}
	for k, v := range properties {
		props.Set(k, v)
	}

	err = client.Enqueue(posthog.Capture{
		DistinctId: os.Getenv("uuid"),
		Event:      event,
		Properties: props,
	})
	if err != nil {
		fmt.Println(err)
	}
}
