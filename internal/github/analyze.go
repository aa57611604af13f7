package github

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// NodeType buckets a repository area into an architectural layer.
type NodeType string

const (
	NodeFrontend NodeType = "frontend"
	NodeAPI      NodeType = "api"
	NodeBackend  NodeType = "backend"
	NodeDatabase NodeType = "database"
	NodeConfig   NodeType = "config"
	NodeInfra    NodeType = "infra"
	NodeDocs     NodeType = "docs"
	NodeTesting  NodeType = "testing"
)

// ArchitectureNode is one inferred layer of a repository.
type ArchitectureNode struct {
	ID          string   `json:"id"`
	Type        NodeType `json:"type"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Language    string   `json:"language"`
	Path        string   `json:"path"`
	Connections []string `json:"connections"`
}

// Analysis is the full result of analyzing a repository's layout.
type Analysis struct {
	Name          string             `json:"name"`
	FullName      string             `json:"fullName"`
	Description   string             `json:"description"`
	Language      string             `json:"language"`
	URL           string             `json:"url"`
	Stars         int                `json:"stars"`
	Forks         int                `json:"forks"`
	DefaultBranch string             `json:"defaultBranch"`
	Nodes         []ArchitectureNode `json:"nodes"`
}

var extensionLanguages = map[string]string{
	"ts": "TypeScript", "tsx": "TypeScript",
	"js": "JavaScript", "jsx": "JavaScript",
	"py": "Python", "rb": "Ruby", "go": "Go", "rs": "Rust",
	"java": "Java", "swift": "Swift", "kt": "Kotlin", "cs": "C#",
	"cpp": "C++", "c": "C",
	"sql": "SQL", "prisma": "Prisma", "graphql": "GraphQL",
	"yml": "YAML", "yaml": "YAML", "toml": "TOML", "json": "JSON",
	"md": "Markdown", "mdx": "MDX",
	"html": "HTML", "css": "CSS", "scss": "SCSS",
	"dockerfile": "Docker", "tf": "Terraform",
}

type classification struct {
	typ         NodeType
	label       string
	description string
}

func oneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// classifyEntry maps a directory name to an architectural layer, or nil when
// the name carries no signal. Rules match most-specific first.
func classifyEntry(name, fullPath string) *classification {
	lower := strings.ToLower(name)
	path := strings.ToLower(fullPath)

	if containsAny(path, "components", "pages", "views", "app", "src/app") && !strings.Contains(path, "api") {
		return &classification{NodeFrontend, "Frontend", "UI components and pages"}
	}
	if oneOf(lower, "api", "routes", "controllers", "handlers") {
		return &classification{NodeAPI, "API Layer", "API routes and request handlers"}
	}
	if oneOf(lower, "lib", "services", "utils", "helpers", "modules", "core", "src/lib") ||
		containsAny(path, "lib", "services", "utils", "helpers", "modules", "core", "src/lib") {
		return &classification{NodeBackend, "Business Logic", "Services, utilities, and core logic"}
	}
	if oneOf(lower, "prisma", "migrations", "db", "database", "models", "schema") {
		return &classification{NodeDatabase, "Database", "Schema, migrations, and data models"}
	}
	if oneOf(lower, "test", "tests", "__tests__", "spec", "specs", "e2e", "cypress") {
		return &classification{NodeTesting, "Tests", "Test suites and test utilities"}
	}
	if oneOf(lower, "docker", "infra", "deploy", "k8s", "terraform", ".github") ||
		containsAny(lower, "dockerfile", "docker-compose") {
		return &classification{NodeInfra, "Infrastructure", "Deployment and CI/CD configuration"}
	}
	if oneOf(lower, "docs", "documentation", "wiki") {
		return &classification{NodeDocs, "Documentation", "Project documentation"}
	}
	if oneOf(lower, "config", "configs", ".config") {
		return &classification{NodeConfig, "Configuration", "Project configuration files"}
	}
	return nil
}

// detectLanguage picks the most common language among file extensions.
func detectLanguage(files []ContentEntry) string {
	counts := map[string]int{}
	for _, f := range files {
		idx := strings.LastIndex(f.Name, ".")
		if idx < 0 || idx == len(f.Name)-1 {
			continue
		}
		ext := strings.ToLower(f.Name[idx+1:])
		if lang, ok := extensionLanguages[ext]; ok {
			counts[lang]++
		}
	}
	best, bestCount := "Unknown", 0
	langs := make([]string, 0, len(counts))
	for lang := range counts {
		langs = append(langs, lang)
	}
	sort.Strings(langs) // deterministic tie-break
	for _, lang := range langs {
		if counts[lang] > bestCount {
			best, bestCount = lang, counts[lang]
		}
	}
	return best
}

// inferConnections wires layers together along the typical request path.
func inferConnections(nodes []ArchitectureNode) {
	byType := map[NodeType]string{}
	for _, n := range nodes {
		byType[n.Type] = n.ID
	}
	link := func(n *ArchitectureNode, t NodeType) bool {
		if id, ok := byType[t]; ok {
			n.Connections = append(n.Connections, id)
			return true
		}
		return false
	}
	for i := range nodes {
		n := &nodes[i]
		switch n.Type {
		case NodeFrontend:
			if !link(n, NodeAPI) {
				link(n, NodeBackend)
			}
		case NodeAPI:
			link(n, NodeBackend)
			link(n, NodeDatabase)
		case NodeBackend:
			link(n, NodeDatabase)
		case NodeInfra:
			link(n, NodeFrontend)
			link(n, NodeAPI)
		case NodeTesting:
			link(n, NodeFrontend)
			link(n, NodeBackend)
		}
	}
}

var configFileHints = []string{
	"package.json", "tsconfig.json", "next.config", "vite.config",
	"webpack.config", ".env", "tailwind.config", "eslint",
}

var dbFileHints = []string{"prisma", "drizzle", "knexfile", "sequelize", "typeorm"}

var ciFileHints = []string{
	"dockerfile", "docker-compose", ".dockerignore",
	"vercel.json", "netlify.toml", "fly.toml",
}

// AnalyzeRepository inspects a repository's top-level layout (and src/, when
// present) and infers an architecture graph from directory naming patterns.
func (c *Client) AnalyzeRepository(ctx context.Context, owner, repo string) (*Analysis, error) {
	repoData, err := c.GetRepository(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	rootEntries, err := c.GetContents(ctx, owner, repo, "")
	if err != nil {
		return nil, err
	}

	var dirs, files []ContentEntry
	for _, e := range rootEntries {
		if e.Type == "dir" {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
	}

	// src/ commonly nests the interesting layout one level down
	var srcEntries []ContentEntry
	for _, d := range dirs {
		if d.Name == "src" {
			if inner, err := c.GetContents(ctx, owner, repo, "src"); err == nil {
				srcEntries = inner
			}
			break
		}
	}

	type dirEntry struct {
		name     string
		fullPath string
	}
	allDirs := make([]dirEntry, 0, len(dirs)+len(srcEntries))
	for _, d := range dirs {
		allDirs = append(allDirs, dirEntry{d.Name, d.Name})
	}
	for _, e := range srcEntries {
		if e.Type == "dir" {
			allDirs = append(allDirs, dirEntry{e.Name, "src/" + e.Name})
		}
	}

	repoLang := repoData.Language
	if repoLang == "" {
		repoLang = "Unknown"
	}

	nodeMap := map[NodeType]*ArchitectureNode{}
	var order []NodeType
	for _, d := range allDirs {
		cl := classifyEntry(d.name, d.fullPath)
		if cl == nil {
			continue
		}
		if existing, ok := nodeMap[cl.typ]; ok {
			existing.Path += ", /" + d.fullPath
			continue
		}
		nodeMap[cl.typ] = &ArchitectureNode{
			ID:          string(cl.typ),
			Type:        cl.typ,
			Label:       cl.label,
			Description: cl.description,
			Language:    repoLang,
			Path:        "/" + d.fullPath,
			Connections: []string{},
		}
		order = append(order, cl.typ)
	}

	// root-level config files form a config node when no config dir exists
	var configNames []string
	for _, f := range files {
		if containsAny(strings.ToLower(f.Name), configFileHints...) {
			configNames = append(configNames, f.Name)
		}
	}
	if len(configNames) > 0 {
		if _, ok := nodeMap[NodeConfig]; !ok {
			if len(configNames) > 4 {
				configNames = configNames[:4]
			}
			nodeMap[NodeConfig] = &ArchitectureNode{
				ID:          string(NodeConfig),
				Type:        NodeConfig,
				Label:       "Configuration",
				Description: "Project config: " + strings.Join(configNames, ", "),
				Language:    "JSON/YAML",
				Path:        "/",
				Connections: []string{},
			}
			order = append(order, NodeConfig)
		}
	}

	var dbNames []string
	for _, f := range files {
		if containsAny(strings.ToLower(f.Name), dbFileHints...) {
			dbNames = append(dbNames, f.Name)
		}
	}
	if len(dbNames) > 0 {
		if _, ok := nodeMap[NodeDatabase]; !ok {
			nodeMap[NodeDatabase] = &ArchitectureNode{
				ID:          string(NodeDatabase),
				Type:        NodeDatabase,
				Label:       "Database",
				Description: "Data layer: " + strings.Join(dbNames, ", "),
				Language:    "SQL",
				Path:        "/",
				Connections: []string{},
			}
			order = append(order, NodeDatabase)
		}
	}

	hasCI := false
	for _, f := range files {
		if containsAny(strings.ToLower(f.Name), ciFileHints...) {
			hasCI = true
			break
		}
	}
	hasGithubDir := false
	for _, d := range dirs {
		if d.Name == ".github" {
			hasGithubDir = true
			break
		}
	}
	if hasCI || hasGithubDir {
		if _, ok := nodeMap[NodeInfra]; !ok {
			path := "/"
			if hasGithubDir {
				path = "/.github"
			}
			nodeMap[NodeInfra] = &ArchitectureNode{
				ID:          string(NodeInfra),
				Type:        NodeInfra,
				Label:       "Infrastructure",
				Description: "CI/CD and deployment config",
				Language:    "YAML/Docker",
				Path:        path,
				Connections: []string{},
			}
			order = append(order, NodeInfra)
		}
	}

	nodes := make([]ArchitectureNode, 0, len(order))
	for _, t := range order {
		nodes = append(nodes, *nodeMap[t])
	}
	if len(nodes) == 0 {
		nodes = append(nodes, ArchitectureNode{
			ID:          "source",
			Type:        NodeBackend,
			Label:       "Source Code",
			Description: fmt.Sprintf("Main source code for %s", repo),
			Language:    repoLang,
			Path:        "/",
			Connections: []string{},
		})
	}
	inferConnections(nodes)

	allFiles := files
	for _, e := range srcEntries {
		if e.Type == "file" {
			allFiles = append(allFiles, e)
		}
	}
	lang := repoData.Language
	if lang == "" {
		lang = detectLanguage(allFiles)
	}

	return &Analysis{
		Name:          repoData.Name,
		FullName:      repoData.FullName,
		Description:   repoData.Description,
		Language:      lang,
		URL:           repoData.HTMLURL,
		Stars:         repoData.Stars,
		Forks:         repoData.Forks,
		DefaultBranch: repoData.DefaultBranch,
		Nodes:         nodes,
	}, nil
}
