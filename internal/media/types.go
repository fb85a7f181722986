package media

// Source tells where a media item was discovered.
type Source string

const (
	// SourceAttachment items came from the platform's file attachment list.
	SourceAttachment Source = "attachment"
	// SourceTextLink items were scanned out of the free-form message text.
	SourceTextLink Source = "text_link"
)

// Attachment is the platform-reported file metadata to resolve.
type Attachment struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Mimetype    string `json:"mimetype"`
	URLPrivate  string `json:"url_private"`
	URLDownload string `json:"url_private_download"`
}

// Message is the inbound text plus attachment metadata to resolve.
type Message struct {
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
	// AuthToken is sent as a bearer token when fetching private attachment URLs.
	AuthToken string `json:"-"`
}

// Item is one resolved media reference. For downloaded images URL holds
// a base64 data URI; for everything else it is a pass-through URL.
type Item struct {
	URL      string `json:"url"`
	Name     string `json:"name,omitempty"`
	Title    string `json:"title,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Source   Source `json:"source"`
}

// Bundle groups everything resolved from one message.
type Bundle struct {
	HasMedia bool   `json:"has_media"`
	Images   []Item `json:"images"`
	Videos   []Item `json:"videos"`
	Files    []Item `json:"files"`
}

func (b *Bundle) addImage(it Item) {
	b.Images = append(b.Images, it)
	b.recompute()
}

func (b *Bundle) addVideo(it Item) {
	b.Videos = append(b.Videos, it)
	b.recompute()
}

func (b *Bundle) addFile(it Item) {
	b.Files = append(b.Files, it)
	b.recompute()
}

func (b *Bundle) recompute() {
	b.HasMedia = len(b.Images) > 0 || len(b.Videos) > 0 || len(b.Files) > 0
}
