package flipbook

// Kind identifies what is printed on a page face.
type Kind int

const (
	// KindEmpty is a face with nothing on it: out of range lookahead.
	KindEmpty Kind = iota
	// KindCover is the front cover.
	KindCover
	// KindBackCover is the back cover.
	KindBackCover
	// KindPage is a page of narrative text.
	KindPage
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindCover:
		return "cover"
	case KindBackCover:
		return "back-cover"
	case KindPage:
		return "page"
	default:
		return "unknown"
	}
}

// Face is the content of one logical face of the book.
type Face struct {
	Kind  Kind
	Index int    // logical face index, 0 is the front cover
	Text  string // set for KindPage only
}

// IsEmpty reports whether nothing is printed on the face.
func (f Face) IsEmpty() bool {
	return f.Kind == KindEmpty
}

// IsPage reports whether the face carries narrative text.
func (f Face) IsPage() bool {
	return f.Kind == KindPage
}

// TotalViews returns the number of spreads for a book with pageCount pages:
// the front cover, one spread per left/right pair and the back cover.
func TotalViews(pageCount int) int {
	if pageCount < 0 {
		pageCount = 0
	}
	// ceil((n+1)/2) + 1
	return (pageCount+2)/2 + 1
}

// ContentAt resolves the logical face index i against pages. It never
// panics: anything outside the book is an empty face.
func ContentAt(pages []string, i int) Face {
	n := len(pages)
	switch {
	case i < 0:
		return Face{Kind: KindEmpty, Index: i}
	case i == 0:
		return Face{Kind: KindCover, Index: i}
	case i == n+1:
		return Face{Kind: KindBackCover, Index: i}
	case i > n+1:
		return Face{Kind: KindEmpty, Index: i}
	default:
		return Face{Kind: KindPage, Index: i, Text: pages[i-1]}
	}
}
