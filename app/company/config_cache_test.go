package company

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://www.reclameaqui.com.br/empresa/drogaria-exemplo"
name: "Drogaria Exemplo"
primary: true

settings:
  enabled: true
  refresh_interval: 3600
  max_pages: 50
  page_stride: 10
  fetch_details: true
`

	err := os.WriteFile(filepath.Join(tempDir, "drogaria-exemplo.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 config, got %d", configCache.GetConfigCount())
	}

	config, err := configCache.GetConfig("drogaria-exemplo")
	if err != nil {
		t.Fatal(err)
	}

	if config.Slug != "drogaria-exemplo" {
		t.Errorf("Expected slug 'drogaria-exemplo', got '%s'", config.Slug)
	}
	if config.Name != "Drogaria Exemplo" {
		t.Errorf("Expected name 'Drogaria Exemplo', got '%s'", config.Name)
	}
	if !config.Primary {
		t.Error("Expected primary company")
	}
	if config.Settings.MaxPages == nil || *config.Settings.MaxPages != 50 {
		t.Errorf("Expected max pages 50, got %v", config.Settings.MaxPages)
	}
	if config.Settings.PageStride != 10 {
		t.Errorf("Expected page stride 10, got %d", config.Settings.PageStride)
	}
	if config.Settings.FetchDetails == nil || !*config.Settings.FetchDetails {
		t.Error("Expected fetch_details enabled")
	}
}

func TestConfigCacheDefaults(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://www.reclameaqui.com.br/empresa/concorrente"
name: "Concorrente"

settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "concorrente.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	config, err := configCache.GetConfig("concorrente")
	if err != nil {
		t.Fatal(err)
	}

	if config.Settings.RefreshInterval != 21600 {
		t.Errorf("Expected default refresh interval 21600, got %d", config.Settings.RefreshInterval)
	}
	if config.Settings.PageStride != 1 {
		t.Errorf("Expected default page stride 1, got %d", config.Settings.PageStride)
	}
	if config.Settings.MaxPages != nil {
		t.Errorf("Expected unset max pages, got %d", *config.Settings.MaxPages)
	}
	if config.Settings.FetchDetails != nil {
		t.Errorf("Expected unset fetch_details, got %v", *config.Settings.FetchDetails)
	}
	if config.Primary {
		t.Error("Expected non-primary by default")
	}
}

func TestConfigCacheExplicitZeroMaxPages(t *testing.T) {
	tempDir := t.TempDir()

	// An explicit zero is not the same as leaving max_pages out: it asks
	// for an adaptive crawl instead of inheriting the global page budget.
	content := `
url: "https://www.reclameaqui.com.br/empresa/adaptiva"
name: "Adaptiva"

settings:
  enabled: true
  max_pages: 0
  fetch_details: false
`

	err := os.WriteFile(filepath.Join(tempDir, "adaptiva.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	config, err := configCache.GetConfig("adaptiva")
	if err != nil {
		t.Fatal(err)
	}

	if config.Settings.MaxPages == nil || *config.Settings.MaxPages != 0 {
		t.Errorf("Expected explicit max pages 0, got %v", config.Settings.MaxPages)
	}
	if config.Settings.FetchDetails == nil || *config.Settings.FetchDetails {
		t.Errorf("Expected explicit fetch_details false, got %v", config.Settings.FetchDetails)
	}
}

func TestConfigCacheMissingURL(t *testing.T) {
	tempDir := t.TempDir()

	content := `
name: "Sem URL"
settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "sem-url.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err == nil {
		t.Fatal("Expected error for config without URL")
	}
	if !strings.Contains(err.Error(), "URL") {
		t.Errorf("Expected URL error, got: %v", err)
	}
}

func TestConfigCacheRelativeURL(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "/empresa/relativa"
name: "Relativa"
`

	err := os.WriteFile(filepath.Join(tempDir, "relativa.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err == nil {
		t.Fatal("Expected error for relative company URL")
	}
}

func TestConfigCacheEnabledConfigs(t *testing.T) {
	tempDir := t.TempDir()

	enabled := `
url: "https://www.reclameaqui.com.br/empresa/ativa"
name: "Ativa"
settings:
  enabled: true
`
	disabled := `
url: "https://www.reclameaqui.com.br/empresa/inativa"
name: "Inativa"
settings:
  enabled: false
`

	if err := os.WriteFile(filepath.Join(tempDir, "ativa.yml"), []byte(enabled), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "inativa.yml"), []byte(disabled), 0644); err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if len(configCache.GetConfigs()) != 2 {
		t.Errorf("Expected 2 configs, got %d", len(configCache.GetConfigs()))
	}

	enabledConfigs := configCache.GetEnabledConfigs()
	if len(enabledConfigs) != 1 {
		t.Fatalf("Expected 1 enabled config, got %d", len(enabledConfigs))
	}
	if _, ok := enabledConfigs["ativa"]; !ok {
		t.Error("Expected 'ativa' in enabled configs")
	}
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache("/nonexistent/path")
	if err := configCache.Run(); err != nil {
		t.Errorf("Missing directory should not be an error, got: %v", err)
	}
	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 configs, got %d", configCache.GetConfigCount())
	}
}
