package domain

// LinkType names one of an idea's link collections.
type LinkType string

const (
	LinkMemory   LinkType = "memory"
	LinkResource LinkType = "resource"
	LinkPerson   LinkType = "person"
)

func (t LinkType) Valid() bool {
	return t == LinkMemory || t == LinkResource || t == LinkPerson
}

// MemoryLink points at an excerpt from an external journal or memory file.
type MemoryLink struct {
	ID         string `json:"id"`
	Date       string `json:"date" validate:"required"`
	Excerpt    string `json:"excerpt" validate:"max=500"`
	SourceFile string `json:"sourceFile,omitempty"`
}

// ResourceLink points at a video, podcast, article or paper.
type ResourceLink struct {
	ID    string `json:"id"`
	Type  string `json:"type" validate:"required,oneof=video podcast article paper"`
	Title string `json:"title" validate:"max=200"`
	URL   string `json:"url,omitempty" validate:"omitempty,url"`
	Note  string `json:"note,omitempty" validate:"max=500"`
}

// PersonLink names someone involved with an idea.
type PersonLink struct {
	ID         string `json:"id"`
	Name       string `json:"name" validate:"max=100"`
	Role       string `json:"role,omitempty" validate:"max=100"`
	IsBlocking bool   `json:"isBlocking,omitempty"`
}

// WithLink returns a copy of the idea with link appended to the matching collection.
// link must be a MemoryLink, ResourceLink or PersonLink with its ID already assigned.
func (i Idea) WithLink(link any) (Idea, bool) {
	out := i.Clone()
	switch l := link.(type) {
	case MemoryLink:
		out.MemoryLinks = append(out.MemoryLinks, l)
	case ResourceLink:
		out.ResourceLinks = append(out.ResourceLinks, l)
	case PersonLink:
		out.PersonLinks = append(out.PersonLinks, l)
	default:
		return i, false
	}
	return out, true
}

// WithoutLink returns a copy of the idea with the link removed. Removing an id
// that is not present leaves the collection unchanged.
func (i Idea) WithoutLink(t LinkType, linkID string) (Idea, bool) {
	out := i.Clone()
	switch t {
	case LinkMemory:
		out.MemoryLinks = filterLinks(out.MemoryLinks, func(l MemoryLink) bool { return l.ID != linkID })
	case LinkResource:
		out.ResourceLinks = filterLinks(out.ResourceLinks, func(l ResourceLink) bool { return l.ID != linkID })
	case LinkPerson:
		out.PersonLinks = filterLinks(out.PersonLinks, func(l PersonLink) bool { return l.ID != linkID })
	default:
		return i, false
	}
	return out, true
}

func filterLinks[T any](links []T, keep func(T) bool) []T {
	out := make([]T, 0, len(links))
	for _, l := range links {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}
