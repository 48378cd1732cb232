package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if !cfg.RepeatHeader || !cfg.RepeatDocInfo || !cfg.RepeatRowHeader {
		t.Errorf("header sections must repeat by default: %+v", cfg)
	}
	if cfg.RepeatFooter || cfg.RepeatFooterLogo {
		t.Errorf("footer sections must not repeat by default: %+v", cfg)
	}
	if !cfg.InsertDummyRowItem || cfg.InsertDummyRow || !cfg.InsertFooterSpacer || !cfg.InsertFooterSpacerWithDummyRowItem {
		t.Errorf("unexpected filler defaults: %+v", cfg)
	}
	if cfg.PageWidth != 750 || cfg.PageHeight != 1050 || cfg.DummyRowHeight != 18 {
		t.Errorf("unexpected dimensions: %v x %v, dummy %v", cfg.PageWidth, cfg.PageHeight, cfg.DummyRowHeight)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		attrs AttrMap
		check func(t *testing.T, c Config)
	}{
		{
			name:  "no attributes keeps base",
			attrs: AttrMap{},
			check: func(t *testing.T, c Config) {
				if c != Default() {
					t.Errorf("got %+v, want defaults", c)
				}
			},
		},
		{
			name: "flags",
			attrs: AttrMap{
				AttrRepeatHeader:   "n",
				AttrRepeatFooter:   "Y",
				AttrInsertDummyRow: "yes",
				AttrRepeatDocInfo:  "whatever",
			},
			check: func(t *testing.T, c Config) {
				if c.RepeatHeader {
					t.Error("RepeatHeader should be false")
				}
				if !c.RepeatFooter {
					t.Error("RepeatFooter should be true")
				}
				if !c.InsertDummyRow {
					t.Error("InsertDummyRow should be true")
				}
				if c.RepeatDocInfo {
					t.Error("unrecognized flag value should read as false")
				}
			},
		},
		{
			name: "numbers",
			attrs: AttrMap{
				AttrPageHeight:     "1123",
				AttrPageWidth:      "794px",
				AttrDummyRowHeight: "abc",
			},
			check: func(t *testing.T, c Config) {
				if c.PageHeight != 1123 || c.PageWidth != 794 {
					t.Errorf("got %v x %v", c.PageWidth, c.PageHeight)
				}
				if c.DummyRowHeight != 18 {
					t.Errorf("unparsable number should keep base, got %v", c.DummyRowHeight)
				}
			},
		},
		{
			name: "empty values keep base",
			attrs: AttrMap{
				AttrRepeatHeader:       "",
				AttrPageHeight:         "  ",
				AttrCustomDummyContent: "",
			},
			check: func(t *testing.T, c Config) {
				if !c.RepeatHeader || c.PageHeight != 1050 || c.CustomDummyContent != "" {
					t.Errorf("got %+v", c)
				}
			},
		},
		{
			name:  "custom content",
			attrs: AttrMap{AttrCustomDummyContent: "<tr><td>-</td></tr>"},
			check: func(t *testing.T, c Config) {
				if c.CustomDummyContent != "<tr><td>-</td></tr>" {
					t.Errorf("got %q", c.CustomDummyContent)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Resolve(tt.attrs, Default()))
		})
	}
}

func TestResolveDoesNotTouchBase(t *testing.T) {
	base := Default()
	_ = Resolve(AttrMap{AttrPageHeight: "500"}, base)
	if base.PageHeight != 1050 {
		t.Errorf("base modified: %v", base.PageHeight)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero page height", func(c *Config) { c.PageHeight = 0 }, false},
		{"negative page width", func(c *Config) { c.PageWidth = -1 }, false},
		{"zero dummy height with dummy items", func(c *Config) { c.DummyRowHeight = 0 }, false},
		{"zero dummy height with footer dummy items only", func(c *Config) {
			c.DummyRowHeight = 0
			c.InsertDummyRowItem = false
		}, false},
		{"zero dummy height without dummy items", func(c *Config) {
			c.DummyRowHeight = 0
			c.InsertDummyRowItem = false
			c.InsertFooterSpacerWithDummyRowItem = false
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestParseYN(t *testing.T) {
	for _, v := range []string{"y", "Y", "yes", "true", "1", " y "} {
		if !ParseYN(v) {
			t.Errorf("ParseYN(%q) = false", v)
		}
	}
	for _, v := range []string{"n", "N", "no", "false", "0", "", "maybe"} {
		if ParseYN(v) {
			t.Errorf("ParseYN(%q) = true", v)
		}
	}
	if FormatYN(true) != "y" || FormatYN(false) != "n" {
		t.Error("FormatYN mismatch")
	}
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Paginate != Default() {
		t.Errorf("template defaults differ from Default():\n%+v\n%+v", cfg.Paginate, Default())
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("console level = %q", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
paginate:
  repeat_footer: true
  papersize_height: 1123
  height_of_dummy_row_item: 20
logging:
  console:
    level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if !cfg.Paginate.RepeatFooter {
		t.Error("repeat_footer not applied")
	}
	if cfg.Paginate.PageHeight != 1123 || cfg.Paginate.DummyRowHeight != 20 {
		t.Errorf("got height %v dummy %v", cfg.Paginate.PageHeight, cfg.Paginate.DummyRowHeight)
	}
	if !cfg.Paginate.RepeatHeader || cfg.Paginate.PageWidth != 750 {
		t.Error("values absent from file must keep template defaults")
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Errorf("console level = %q", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "version: 1\npaginate:\n  no_such_option: true\n"},
		{"bad version", "version: 2\n"},
		{"zero dummy height", "version: 1\npaginate:\n  height_of_dummy_row_item: 0\n"},
		{"bad log level", "version: 1\nlogging:\n  console:\n    level: loud\n"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, strings.ReplaceAll(tt.name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("case %d: %v", i, err)
			}
			if _, err := LoadConfiguration(path); err == nil {
				t.Errorf("LoadConfiguration() expected error")
			}
		})
	}

	if _, err := LoadConfiguration(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	for _, want := range []string{"version: 1", "papersize_height: 1050", "repeat_header: true"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("dump does not contain %q:\n%s", want, data)
		}
	}
}

func TestPrepareLogger(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.log")
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "debug", Destination: dest, Mode: "overwrite"},
	}
	log, err := conf.Prepare(false)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Debug("hello from test")
	_ = log.Sync()

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file does not contain message: %q", data)
	}
}
