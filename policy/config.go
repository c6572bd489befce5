// Package policy holds the regex driven configuration that steers
// selection, adaptation and template expansion.
package policy

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Config mirrors the configuration file. Every regex is kept as text until
// Compile is called. An empty pattern matches nothing.
type Config struct {
	APIMarkers    []string `mapstructure:"api_markers"`
	ExcludeNonAPI bool     `mapstructure:"exclude_non_api"`

	RootNamespaces   []string `mapstructure:"root_namespaces"`
	NamespaceExclude string   `mapstructure:"namespace_exclude"`

	FnExclude      string `mapstructure:"fn_exclude"`
	ClassExclude   string `mapstructure:"class_exclude"`
	EnumExclude    string `mapstructure:"enum_exclude"`
	MemberExclude  string `mapstructure:"member_exclude"`
	MemberReadonly string `mapstructure:"member_readonly"`

	BoxedParams    string `mapstructure:"boxed_params"`
	OutputToReturn string `mapstructure:"output_to_return"`

	BufferFunctions     string   `mapstructure:"buffer_functions"`
	BufferTypes         []string `mapstructure:"buffer_types"`
	BufferTemplateTypes []string `mapstructure:"buffer_template_types"`
	BufferSizeNames     string   `mapstructure:"buffer_size_names"`

	StringListFunctions  string `mapstructure:"string_list_functions"`
	CArrayConstFunctions string `mapstructure:"c_array_const_functions"`
	CArrayBoxedFunctions string `mapstructure:"c_array_boxed_functions"`
	CArrayBoxedMaxSize   int    `mapstructure:"c_array_boxed_max_size"`

	ForceReferencePointers   string `mapstructure:"force_reference_pointers"`
	ForceReferenceReferences string `mapstructure:"force_reference_references"`

	FnTemplates    []TemplateEntry `mapstructure:"fn_templates"`
	ClassTemplates []TemplateEntry `mapstructure:"class_templates"`

	DynamicAttributes   string `mapstructure:"dynamic_attributes"`
	ExposeProtected     string `mapstructure:"expose_protected"`
	OverridableVirtual  string `mapstructure:"overridable_virtual"`
	MemberNumericArrays string `mapstructure:"member_numeric_arrays"`

	HeaderGuards string `mapstructure:"header_guards"`

	EnumStripPrefix bool `mapstructure:"enum_strip_prefix"`
	EnumSkipCount   bool `mapstructure:"enum_skip_count"`
	SnakeCase       bool `mapstructure:"snake_case"`
}

// TemplateEntry instantiates every template whose name matches Name once
// per entry of Types, in order. Suffix appends the type to the host name.
type TemplateEntry struct {
	Name   string   `mapstructure:"name"`
	Types  []string `mapstructure:"types"`
	Suffix bool     `mapstructure:"suffix"`
}

// DefaultBufferTypes are the numeric element types accepted for buffers.
var DefaultBufferTypes = []string{
	"uint8_t", "int8_t", "uint16_t", "int16_t", "uint32_t", "int32_t",
	"uint64_t", "int64_t", "float", "double", "long double", "long long",
}

// SizeNameRegex builds a pattern recognizing variable names that contain
// one of words as a standalone word: "n", "n_items", "items_n", "nItems",
// "n2".
func SizeNameRegex(words ...string) string {
	var parts []string
	for _, w := range words {
		parts = append(parts,
			"^"+w+"$",
			"^"+w+"_",
			"_"+w+"$",
			"^"+w+"[A-Z][a-z_]",
			w+"[0-9]$",
		)
	}

	return strings.Join(parts, "|")
}

// SetDefaults installs the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api_markers", []string{})
	v.SetDefault("exclude_non_api", true)

	v.SetDefault("root_namespaces", []string{})
	v.SetDefault("namespace_exclude", "[Ii]nternal|[Dd]etail")

	v.SetDefault("fn_exclude", "")
	v.SetDefault("class_exclude", "")
	v.SetDefault("enum_exclude", "")
	v.SetDefault("member_exclude", "")
	v.SetDefault("member_readonly", "")

	v.SetDefault("boxed_params", "")
	v.SetDefault("output_to_return", "")

	v.SetDefault("buffer_functions", ".*")
	v.SetDefault("buffer_types", DefaultBufferTypes)
	v.SetDefault("buffer_template_types", []string{"T", "NumericType"})
	v.SetDefault("buffer_size_names", SizeNameRegex("nb", "size", "count", "total", "n"))

	v.SetDefault("string_list_functions", ".*")
	v.SetDefault("c_array_const_functions", ".*")
	v.SetDefault("c_array_boxed_functions", ".*")
	v.SetDefault("c_array_boxed_max_size", 10)

	v.SetDefault("force_reference_pointers", "")
	v.SetDefault("force_reference_references", "")

	v.SetDefault("fn_templates", []map[string]any{})
	v.SetDefault("class_templates", []map[string]any{})

	v.SetDefault("dynamic_attributes", "")
	v.SetDefault("expose_protected", "")
	v.SetDefault("overridable_virtual", "")
	v.SetDefault("member_numeric_arrays", ".*")

	v.SetDefault("header_guards", `__cplusplus|_h_$|_h$|_H$|_H_$|hpp$|HPP$|hxx$|HXX$`)

	v.SetDefault("enum_strip_prefix", true)
	v.SetDefault("enum_skip_count", true)
	v.SetDefault("snake_case", true)
}

// NewViper returns a viper instance with defaults installed and
// HOSTBIND_ prefixed environment overrides enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("HOSTBIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	return v
}

// DefaultConfig returns the configuration with every default applied.
func DefaultConfig() Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(errors.Wrap(err, "unmarshal defaults"))
	}

	return cfg
}

// LoadWithViper decodes the configuration held by v.
func LoadWithViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Mark(errors.Wrap(err, "unmarshal policy"), ErrInvalidPolicy)
	}

	return cfg, nil
}

// LoadFile reads a TOML, YAML or JSON policy file on top of the defaults.
// An empty path yields the defaults plus environment overrides.
func LoadFile(path string) (Config, error) {
	v := NewViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			err = errors.Wrapf(err, "read policy file %s", path)
			err = errors.WithHint(err, "policy files may be .toml, .yaml or .json")
			return Config{}, errors.Mark(err, ErrInvalidPolicy)
		}
	}

	return LoadWithViper(v)
}
