package docs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Example is a command line shown in a bash block of a topic.
type Example struct {
	Topic string
	Line  int      // line of the command in the topic file
	Args  []string // arguments after the program name
}

func (e Example) String() string {
	return fmt.Sprintf("%s.md:%d: ftk %s", e.Topic, e.Line, strings.Join(e.Args, " "))
}

// Examples returns every ftk command line of the bash blocks of all topics.
func Examples() ([]Example, error) {
	var examples []Example
	for _, topic := range append(AllTopics(), index) {
		content, err := docs.ReadFile(topic + ".md")
		if err != nil {
			return nil, err
		}
		examples = append(examples, parseExamples(topic, content)...)
	}
	return examples, nil
}

func parseExamples(topic string, content []byte) []Example {
	root := goldmark.DefaultParser().Parse(text.NewReader(content))
	var examples []Example
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || string(fcb.Language(content)) != "bash" {
			return ast.WalkContinue, nil
		}
		lines := fcb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			args := splitArgs(string(seg.Value(content)))
			if len(args) == 0 || args[0] != "ftk" {
				continue
			}
			examples = append(examples, Example{
				Topic: topic,
				Line:  bytes.Count(content[:seg.Start], []byte{'\n'}) + 1,
				Args:  args[1:],
			})
		}
		return ast.WalkContinue, nil
	})
	return examples
}

// splitArgs splits a shell line into words, honoring single and double quotes.
func splitArgs(line string) []string {
	var (
		args   []string
		word   strings.Builder
		quote  rune
		inWord bool
	)
	for _, r := range line {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			word.WriteRune(r)
		case r == '"' || r == '\'':
			quote, inWord = r, true
		case r == ' ' || r == '\t' || r == '\n':
			if inWord {
				args = append(args, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		args = append(args, word.String())
	}
	return args
}
