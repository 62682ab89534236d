package filter

// DefaultDeny is the catalog of conventionally ignored names and patterns.
// Entries are compared against a node's name and matched against its
// relative path with the glob package.
var DefaultDeny = []string{
	// Git
	".git",
	".gitignore",
	".gitattributes",
	".gitmodules",

	// Dependencies
	"node_modules",
	"vendor",
	"bower_components",
	"jspm_packages",

	// Python
	"__pycache__",
	".venv",
	"venv",
	"env",
	".env",
	".env.local",
	".env.*.local",
	"*.pyc",
	"*.pyo",
	"*.egg-info",
	".eggs",
	".pytest_cache",
	".mypy_cache",

	// Build outputs
	"build",
	"dist",
	"out",
	"target",
	".next",
	".nuxt",
	".output",
	".vercel",
	".netlify",

	// IDE / editors
	".idea",
	".vscode",
	"*.swp",
	"*.swo",
	".project",
	".classpath",
	".settings",

	// OS files
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",

	// Logs
	"*.log",
	"npm-debug.log*",
	"yarn-debug.log*",
	"yarn-error.log*",
	"logs",

	// Cache
	".cache",
	".parcel-cache",
	".eslintcache",
	".stylelintcache",

	// Coverage
	"coverage",
	".nyc_output",
	"htmlcov",

	// Lock files
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"composer.lock",
	"Gemfile.lock",
	"poetry.lock",

	// Misc
	".terraform",
	".serverless",
	"*.min.js",
	"*.min.css",
	"*.map",
}

// DefaultGroups returns the catalog split by the section headers above,
// in catalog order. Used for display only.
func DefaultGroups() []Group {
	return []Group{
		{Name: "Git", Patterns: DefaultDeny[0:4]},
		{Name: "Dependencies", Patterns: DefaultDeny[4:8]},
		{Name: "Python", Patterns: DefaultDeny[8:21]},
		{Name: "Build outputs", Patterns: DefaultDeny[21:30]},
		{Name: "IDE / editors", Patterns: DefaultDeny[30:37]},
		{Name: "OS files", Patterns: DefaultDeny[37:40]},
		{Name: "Logs", Patterns: DefaultDeny[40:45]},
		{Name: "Cache", Patterns: DefaultDeny[45:49]},
		{Name: "Coverage", Patterns: DefaultDeny[49:52]},
		{Name: "Lock files", Patterns: DefaultDeny[52:58]},
		{Name: "Misc", Patterns: DefaultDeny[58:]},
	}
}

// Group is one labelled section of the default catalog
type Group struct {
	Name     string
	Patterns []string
}
