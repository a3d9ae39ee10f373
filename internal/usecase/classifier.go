package usecase

import (
	"strings"

	"github.com/GioMach/rentwatch/internal/domain"
)

// Classifier maps free-form message text to the service tags whose keyword
// phrases it contains. Matching is case-insensitive substring containment;
// a text may match zero, one, or many tags with no precedence among them.
type Classifier struct {
	tags    []domain.ServiceTag
	phrases map[domain.ServiceTag][]string
}

func NewClassifier(catalog domain.Catalog) *Classifier {
	phrases := make(map[domain.ServiceTag][]string, len(catalog))
	for tag, list := range catalog {
		lowered := make([]string, 0, len(list))
		for _, phrase := range list {
			lowered = append(lowered, strings.ToLower(phrase))
		}
		phrases[tag] = lowered
	}
	return &Classifier{tags: catalog.Tags(), phrases: phrases}
}

// Classify returns the matched tags in stable catalog order. It is pure:
// no I/O, deterministic for a given catalog.
func (c *Classifier) Classify(text string) []domain.ServiceTag {
	if text == "" {
		return nil
	}
	lowered := strings.ToLower(text)

	var matched []domain.ServiceTag
	for _, tag := range c.tags {
		for _, phrase := range c.phrases[tag] {
			if strings.Contains(lowered, phrase) {
				matched = append(matched, tag)
				break
			}
		}
	}
	return matched
}
