package entity

import "encoding/xml"

// Namespaces declared on every generated feed. Legacy clients resolve
// media:* and yt:* elements against these exact URIs.
const (
	NSAtom  = "http://www.w3.org/2005/Atom"
	NSMedia = "http://search.yahoo.com/mrss/"
	NSYt    = "http://gdata.youtube.com/schemas/2007"
)

type Feed struct {
	XMLName    xml.Name `xml:"feed"`
	Xmlns      string   `xml:"xmlns,attr"`
	XmlnsMedia string   `xml:"xmlns:media,attr"`
	XmlnsYt    string   `xml:"xmlns:yt,attr"`
	ID         string   `xml:"id,omitempty"`
	Title      string   `xml:"title,omitempty"`
	Updated    string   `xml:"updated,omitempty"`
	Entry      []Entry  `xml:"entry"`
}

type Entry struct {
	XMLName    xml.Name    `xml:"entry"`
	ID         string      `xml:"id"`
	Title      string      `xml:"title"`
	Published  string      `xml:"published"`
	Author     *Author     `xml:"author,omitempty"`
	Media      *MediaGroup `xml:"media:group,omitempty"`
	Statistics *Statistics `xml:"yt:statistics,omitempty"`
}

type Author struct {
	Name string `xml:"name"`
	URI  string `xml:"uri,omitempty"`
}

type MediaGroup struct {
	Thumbnail   *MediaThumbnail `xml:"media:thumbnail,omitempty"`
	Description string          `xml:"media:description,omitempty"`
}

type MediaThumbnail struct {
	URL string `xml:"url,attr"`
}

type Statistics struct {
	ViewCount       int64  `xml:"viewCount,attr"`
	SubscriberCount string `xml:"subscriberCount,attr,omitempty"`
}
