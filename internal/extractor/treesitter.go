package extractor

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// treeSitterLanguages maps source extensions to the grammar used to find
// their leading comment. JSX needs the TSX grammar; plain TypeScript keeps
// the TypeScript grammar so angle-bracket casts parse.
type treeSitterLanguages struct {
	typescript *sitter.Language
	tsx        *sitter.Language
}

func newTreeSitterLanguages() *treeSitterLanguages {
	return &treeSitterLanguages{
		typescript: sitter.NewLanguage(typescript.LanguageTypescript()),
		tsx:        sitter.NewLanguage(typescript.LanguageTSX()),
	}
}

func (l *treeSitterLanguages) forExt(ext string) *sitter.Language {
	switch ext {
	case ".ts", ".mts", ".cts":
		return l.typescript
	case ".js", ".jsx", ".mjs", ".cjs", ".tsx":
		return l.tsx
	default:
		return nil
	}
}

// treeSitterLeadingComment returns the comment nodes that open the header
// window, or ok=false when the grammar could not be applied or the window does
// not parse cleanly before its first statement. A nil block with ok=true means
// the file starts with code.
func treeSitterLeadingComment(language *sitter.Language, source []byte) (block *headerBlock, ok bool) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(language); err != nil {
		return nil, false
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, false
	}
	defer tree.Close()

	root := tree.RootNode()

	var (
		comments []*sitter.Node
		lineMode bool
	)
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(uint(i))
		if child == nil {
			break
		}
		if child.Kind() == "hash_bang_line" {
			continue
		}
		if child.Kind() != "comment" {
			break
		}

		text := extractNodeText(child, source)
		if len(comments) == 0 {
			comments = append(comments, child)
			lineMode = strings.HasPrefix(text, "//")
			if !lineMode {
				break
			}
			continue
		}

		// consecutive // comments on adjacent rows form one block
		prev := comments[len(comments)-1]
		if !strings.HasPrefix(text, "//") || child.StartPosition().Row != prev.EndPosition().Row+1 {
			break
		}
		comments = append(comments, child)
	}

	if len(comments) == 0 {
		// the window may end mid-statement; the line scanner decides
		return nil, !root.HasError()
	}

	var lines []string
	for _, c := range comments {
		lines = append(lines, strings.Split(extractNodeText(c, source), "\n")...)
	}
	return &headerBlock{lines: lines}, true
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}
