// Package pyproject reads and rewrites tool exclude arrays in pyproject.toml
// while leaving every other line of the document byte-for-byte intact.
package pyproject

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ExcludeKey identifies where a quality tool stores its exclude list.
type ExcludeKey struct {
	// Table is the tool table name, for example "ruff" for [tool.ruff].
	Table string
	// Key is the array key inside the table, for example "extend-exclude".
	Key string
}

// Exclude keys for the supported tools.
var (
	RuffExcludeKey    = ExcludeKey{Table: "ruff", Key: "extend-exclude"}
	PyrightExcludeKey = ExcludeKey{Table: "pyright", Key: "exclude"}
)

const (
	toolTableName       = "tool"
	excludeEntryIndent  = "    "
	documentPermissions = 0o644
)

// Document is an in-memory pyproject.toml. The raw text is the source of
// truth; the parsed tree is only used for validation and reads, so comments
// and formatting survive a rewrite.
type Document struct {
	content string
}

// Load reads and validates a pyproject.toml file.
func Load(path string) (*Document, error) {
	rawContent, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, &ConfigError{Path: path, Reason: "read configuration", Err: readErr}
	}
	document := &Document{content: string(rawContent)}
	if _, parseErr := document.parse(); parseErr != nil {
		return nil, &ConfigError{Path: path, Reason: "parse TOML", Err: parseErr}
	}
	return document, nil
}

// Content returns the current document text.
func (document *Document) Content() string {
	return document.content
}

// Save writes the document back to disk. Callers only reach this after the
// full merged list has been computed and spliced, so a failed run never leaves
// a partially rewritten file behind.
func (document *Document) Save(path string) error {
	if writeErr := os.WriteFile(path, []byte(document.content), documentPermissions); writeErr != nil {
		return &ConfigError{Path: path, Reason: "write configuration", Err: writeErr}
	}
	return nil
}

func (document *Document) parse() (map[string]any, error) {
	var parsedTree map[string]any
	if unmarshalErr := toml.Unmarshal([]byte(document.content), &parsedTree); unmarshalErr != nil {
		return nil, unmarshalErr
	}
	return parsedTree, nil
}

// ExcludeList returns the exclude array stored under the given key. A missing
// tool table is a ConfigError; a present table without the key reads as an
// empty list, which is the state of a project before its first run.
func (document *Document) ExcludeList(key ExcludeKey) ([]string, error) {
	parsedTree, parseErr := document.parse()
	if parseErr != nil {
		return nil, &ConfigError{Reason: "parse TOML", Err: parseErr}
	}
	table, tableErr := lookupToolTable(parsedTree, key.Table)
	if tableErr != nil {
		return nil, tableErr
	}
	rawValue, keyPresent := table[key.Key]
	if !keyPresent {
		return nil, nil
	}
	rawEntries, isArray := rawValue.([]any)
	if !isArray {
		return nil, &ConfigError{Reason: fmt.Sprintf("[%s.%s] %s is not an array", toolTableName, key.Table, key.Key)}
	}
	excludePaths := make([]string, 0, len(rawEntries))
	for _, rawEntry := range rawEntries {
		entryText, isString := rawEntry.(string)
		if !isString {
			return nil, &ConfigError{Reason: fmt.Sprintf("[%s.%s] %s contains a non-string entry", toolTableName, key.Table, key.Key)}
		}
		excludePaths = append(excludePaths, entryText)
	}
	return excludePaths, nil
}

// SetExcludeList replaces, or inserts when absent, the exclude array
// assignment inside the tool's table. The splice only recognizes tables
// declared with an explicit [tool.<name>] header line; a table expressed
// through dotted keys under [tool] reads fine but cannot be rewritten and
// returns a ConfigError. The spliced result is re-parsed before it replaces
// the document, so a bad rewrite can never be saved.
func (document *Document) SetExcludeList(key ExcludeKey, excludePaths []string) error {
	if _, readErr := document.ExcludeList(key); readErr != nil {
		return readErr
	}
	documentLines := strings.Split(document.content, "\n")
	headerIndex, sectionEnd := tableSpan(documentLines, key.Table)
	if headerIndex < 0 {
		return &ConfigError{Reason: fmt.Sprintf("cannot locate the [%s.%s] table header", toolTableName, key.Table)}
	}
	assignmentLines := renderExcludeAssignment(key.Key, excludePaths)
	assignmentStart, assignmentEnd, assignmentFound := assignmentSpan(documentLines, headerIndex+1, sectionEnd, key.Key)

	var rebuiltLines []string
	if assignmentFound {
		rebuiltLines = append(rebuiltLines, documentLines[:assignmentStart]...)
		rebuiltLines = append(rebuiltLines, assignmentLines...)
		rebuiltLines = append(rebuiltLines, documentLines[assignmentEnd:]...)
	} else {
		insertIndex := sectionEnd
		for insertIndex > headerIndex+1 && strings.TrimSpace(documentLines[insertIndex-1]) == "" {
			insertIndex--
		}
		rebuiltLines = append(rebuiltLines, documentLines[:insertIndex]...)
		rebuiltLines = append(rebuiltLines, assignmentLines...)
		rebuiltLines = append(rebuiltLines, documentLines[insertIndex:]...)
	}

	rebuiltContent := strings.Join(rebuiltLines, "\n")
	candidate := &Document{content: rebuiltContent}
	if _, parseErr := candidate.parse(); parseErr != nil {
		return &ConfigError{Reason: "rewrite produced invalid TOML", Err: parseErr}
	}
	document.content = rebuiltContent
	return nil
}

func lookupToolTable(parsedTree map[string]any, tableName string) (map[string]any, error) {
	toolValue, toolPresent := parsedTree[toolTableName]
	if !toolPresent {
		return nil, &ConfigError{Reason: fmt.Sprintf("missing [%s.%s] table", toolTableName, tableName)}
	}
	toolTables, toolIsTable := toolValue.(map[string]any)
	if !toolIsTable {
		return nil, &ConfigError{Reason: fmt.Sprintf("[%s] is not a table", toolTableName)}
	}
	tableValue, tablePresent := toolTables[tableName]
	if !tablePresent {
		return nil, &ConfigError{Reason: fmt.Sprintf("missing [%s.%s] table", toolTableName, tableName)}
	}
	table, tableIsTable := tableValue.(map[string]any)
	if !tableIsTable {
		return nil, &ConfigError{Reason: fmt.Sprintf("[%s.%s] is not a table", toolTableName, tableName)}
	}
	return table, nil
}

// tableSpan locates the [tool.<name>] header line and the index of the line
// that starts the next table, or len(lines) when the table runs to the end of
// the document.
func tableSpan(documentLines []string, tableName string) (int, int) {
	headerText := fmt.Sprintf("[%s.%s]", toolTableName, tableName)
	headerIndex := -1
	for lineIndex, documentLine := range documentLines {
		trimmedLine := strings.TrimSpace(documentLine)
		if headerIndex < 0 {
			if trimmedLine == headerText {
				headerIndex = lineIndex
			}
			continue
		}
		if strings.HasPrefix(trimmedLine, "[") {
			return headerIndex, lineIndex
		}
	}
	if headerIndex < 0 {
		return -1, -1
	}
	return headerIndex, len(documentLines)
}

// assignmentSpan locates the exclude assignment inside the table body and
// returns the half-open line range it occupies. Multi-line arrays are tracked
// by bracket depth, ignoring brackets inside quoted strings.
func assignmentSpan(documentLines []string, bodyStart int, bodyEnd int, keyName string) (int, int, bool) {
	for lineIndex := bodyStart; lineIndex < bodyEnd; lineIndex++ {
		if !lineAssignsKey(documentLines[lineIndex], keyName) {
			continue
		}
		bracketDepth := 0
		sawOpeningBracket := false
		for spanIndex := lineIndex; spanIndex < bodyEnd; spanIndex++ {
			opened, closed := countBrackets(documentLines[spanIndex])
			bracketDepth += opened - closed
			if opened > 0 {
				sawOpeningBracket = true
			}
			if sawOpeningBracket && bracketDepth <= 0 {
				return lineIndex, spanIndex + 1, true
			}
		}
		return lineIndex, bodyEnd, true
	}
	return 0, 0, false
}

// lineAssignsKey reports whether the line assigns the given key, accepting
// both bare and quoted key forms.
func lineAssignsKey(documentLine string, keyName string) bool {
	trimmedLine := strings.TrimSpace(documentLine)
	for _, keyForm := range []string{keyName, `"` + keyName + `"`, `'` + keyName + `'`} {
		if !strings.HasPrefix(trimmedLine, keyForm) {
			continue
		}
		remainder := strings.TrimSpace(trimmedLine[len(keyForm):])
		if strings.HasPrefix(remainder, "=") {
			return true
		}
	}
	return false
}

// countBrackets counts square brackets outside quoted strings on one line.
func countBrackets(documentLine string) (int, int) {
	openedCount := 0
	closedCount := 0
	insideString := false
	var stringDelimiter rune
	escaped := false
	for _, character := range documentLine {
		if insideString {
			if escaped {
				escaped = false
				continue
			}
			if character == '\\' && stringDelimiter == '"' {
				escaped = true
				continue
			}
			if character == stringDelimiter {
				insideString = false
			}
			continue
		}
		switch character {
		case '"', '\'':
			insideString = true
			stringDelimiter = character
		case '#':
			return openedCount, closedCount
		case '[':
			openedCount++
		case ']':
			closedCount++
		}
	}
	return openedCount, closedCount
}

// renderExcludeAssignment renders the exclude array one entry per line so
// reruns that append a file produce single-line diffs.
func renderExcludeAssignment(keyName string, excludePaths []string) []string {
	if len(excludePaths) == 0 {
		return []string{keyName + " = []"}
	}
	renderedLines := make([]string, 0, len(excludePaths)+2)
	renderedLines = append(renderedLines, keyName+" = [")
	for _, excludePath := range excludePaths {
		renderedLines = append(renderedLines, excludeEntryIndent+`"`+escapeTOMLString(excludePath)+`",`)
	}
	renderedLines = append(renderedLines, "]")
	return renderedLines
}

var tomlStringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeTOMLString(value string) string {
	return tomlStringEscaper.Replace(value)
}
