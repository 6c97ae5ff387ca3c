package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://legodom.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Component Errors (L001-L019)
	// ============================================

	"L001": {
		Category: CategoryComponent,
		Message:  "Invalid component definition",
		Detail:   "Component names must contain a hyphen so they can never collide with built-in HTML elements.",
		DocURL:   docBase + "L001",
	},
	"L002": {
		Category: CategoryComponent,
		Message:  "Template could not be parsed",
		Detail:   "The component template is not valid HTML.",
		DocURL:   docBase + "L002",
	},
	"L003": {
		Category: CategoryComponent,
		Message:  "Malformed state literal",
		Detail:   "A b-data attribute must hold an object literal such as { count: 0 }. The component continues with an empty state.",
		DocURL:   docBase + "L003",
	},

	// ============================================
	// Single-File Component Errors (L020-L039)
	// ============================================

	"L020": {
		Category: CategorySFC,
		Message:  "Empty component file",
		Detail:   "A component file must have at least one section: <template>, <script>, or <style>.",
		DocURL:   docBase + "L020",
	},
	"L021": {
		Category: CategorySFC,
		Message:  "Invalid component script",
		Detail:   "The <script> section must be a data object literal, optionally written as export default { ... }. Methods and hooks are defined in Go.",
		DocURL:   docBase + "L021",
	},
	"L022": {
		Category: CategorySFC,
		Message:  "Component name could not be derived",
		Detail:   "The file name must produce a kebab-case name with at least one hyphen.",
		DocURL:   docBase + "L022",
	},

	// ============================================
	// Router Errors (L040-L049)
	// ============================================

	"L040": {
		Category: CategoryRouter,
		Message:  "Invalid route pattern",
		Detail:   "Route patterns start with / and may contain :name segments.",
		DocURL:   docBase + "L040",
	},
	"L041": {
		Category: CategoryRouter,
		Message:  "No route matches",
		Detail:   "No registered route pattern matches the path.",
		DocURL:   docBase + "L041",
	},

	// ============================================
	// Loader Errors (L050-L059)
	// ============================================

	"L050": {
		Category: CategoryLoader,
		Message:  "Component could not be loaded",
		Detail:   "The remote component loader failed to fetch the component source.",
		DocURL:   docBase + "L050",
	},

	// ============================================
	// Configuration Errors (L060-L079)
	// ============================================

	"L060": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No lego.yaml, lego.json or lego.toml was found in the project directory.",
		DocURL:   docBase + "L060",
	},
	"L061": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file could not be read or contains invalid values.",
		DocURL:   docBase + "L061",
	},
	"L062": {
		Category: CategoryConfig,
		Message:  "Unknown interpolation syntax",
		Detail:   `The syntax setting must be "brackets" or "mustache".`,
		DocURL:   docBase + "L062",
	},

	// ============================================
	// CLI Errors (L080-L099)
	// ============================================

	"L080": {
		Category: CategoryCLI,
		Message:  "Page could not be read",
		DocURL:   docBase + "L080",
	},
	"L081": {
		Category: CategoryCLI,
		Message:  "Component check failed",
		Detail:   "One or more component files are invalid.",
		DocURL:   docBase + "L081",
	},
	"L082": {
		Category: CategoryCLI,
		Message:  "Server failed",
		DocURL:   docBase + "L082",
	},
}

// Register adds or replaces an error template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns every registered code.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
