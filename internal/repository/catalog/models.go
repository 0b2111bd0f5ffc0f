package catalog

type Movie struct {
	ID        string `redis:"-" json:"id" yaml:"id"`
	Title     string `redis:"title" json:"title" yaml:"title"`
	SourceURL string `redis:"source_url" json:"source_url" yaml:"source_url"`
	PosterURL string `redis:"poster_url" json:"poster_url" yaml:"poster_url"`
}
