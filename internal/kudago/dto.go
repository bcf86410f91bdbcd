package kudago

// Page is the paginated envelope most list endpoints return.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func (p Page[T]) HasMore() bool { return p.Next != nil && *p.Next != "" }

type EventDTO struct {
	ID             int64            `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	BodyText       string           `json:"body_text"`
	FavoritesCount int              `json:"favorites_count"`
	SiteURL        string           `json:"site_url"`
	Images         []ImageDTO       `json:"images"`
	Dates          []DateDTO        `json:"dates"`
	Place          *PlaceDTO        `json:"place"`
	Location       *LocationDTO     `json:"location"`
	Participants   []ParticipantDTO `json:"participants"`
}

// DateDTO carries unix seconds. Either side may be null.
type DateDTO struct {
	Start *int64 `json:"start"`
	End   *int64 `json:"end"`
}

type ImageDTO struct {
	Image string `json:"image"`
}

type CoordsDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type PlaceDTO struct {
	ID       int64      `json:"id"`
	Title    string     `json:"title"`
	Slug     string     `json:"slug"`
	Address  string     `json:"address"`
	Coords   *CoordsDTO `json:"coords"`
	Location string     `json:"location"`
}

type LocationDTO struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type ParticipantDTO struct {
	Role *struct {
		Slug string `json:"slug"`
	} `json:"role"`
	Agent *struct {
		ID     int64      `json:"id"`
		Title  string     `json:"title"`
		Images []ImageDTO `json:"images"`
	} `json:"agent"`
}

type CategoryDTO struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type MovieDTO struct {
	ID      int64    `json:"id"`
	SiteURL string   `json:"site_url"`
	Title   string   `json:"title"`
	Year    int      `json:"year"`
	Poster  ImageDTO `json:"poster"`
}

type ListDTO struct {
	ID              int64  `json:"id"`
	PublicationDate *int64 `json:"publication_date"`
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	SiteURL         string `json:"site_url"`
}

type SearchResultDTO struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ItemURL     string    `json:"item_url"`
	CType       string    `json:"ctype"`
	Place       *PlaceDTO `json:"place"`
	DateRange   *DateDTO  `json:"daterange"`
	FirstImage  *ImageDTO `json:"first_image"`
}

// TodayEventDTO is an entry of the events-of-the-day index; Object points at the real item.
type TodayEventDTO struct {
	Date     string `json:"date"`
	Location string `json:"location"`
	Title    string `json:"title"`
	Object   struct {
		ID    int64  `json:"id"`
		CType string `json:"ctype"`
	} `json:"object"`
}
