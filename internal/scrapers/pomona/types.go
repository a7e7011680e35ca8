package pomona

type textNode struct {
	Text string `json:"$t"`
}

type worksheetLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type worksheet struct {
	Title textNode        `json:"title"`
	Link  []worksheetLink `json:"link"`
}

type worksheetFeed struct {
	Feed struct {
		Entry []worksheet `json:"entry"`
	} `json:"feed"`
}

const cellsFeedRel = "http://schemas.google.com/spreadsheets/2006#cellsfeed"

func (w worksheet) cellsFeedUrl() (string, bool) {
	for _, link := range w.Link {
		if link.Rel == cellsFeedRel {
			return link.Href + "?alt=json", true
		}
	}
	return "", false
}
