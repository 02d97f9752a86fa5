package brave

type metaURL struct {
	Hostname string `json:"hostname"`
	Favicon  string `json:"favicon"`
	Path     string `json:"path"`
}

type profile struct {
	Name string `json:"name"`
	Img  string `json:"img"`
}

type thumbnail struct {
	Src      string `json:"src"`
	Original string `json:"original"`
}

type webResult struct {
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	Description   string     `json:"description"`
	Age           string     `json:"age"`
	PageAge       string     `json:"page_age"`
	Profile       profile    `json:"profile"`
	MetaURL       metaURL    `json:"meta_url"`
	Thumbnail     *thumbnail `json:"thumbnail"`
	ExtraSnippets []string   `json:"extra_snippets"`
}

type webResponse struct {
	Query struct {
		Original string `json:"original"`
		Altered  string `json:"altered"`
	} `json:"query"`
	Web *struct {
		Results []webResult `json:"results"`
	} `json:"web"`
}

type imageResult struct {
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Source     string    `json:"source"`
	Thumbnail  thumbnail `json:"thumbnail"`
	Properties struct {
		URL string `json:"url"`
	} `json:"properties"`
}

type imageResponse struct {
	Results []imageResult `json:"results"`
}

type newsResult struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Description string     `json:"description"`
	Age         string     `json:"age"`
	PageAge     string     `json:"page_age"`
	MetaURL     metaURL    `json:"meta_url"`
	Profile     *profile   `json:"profile"`
	Thumbnail   *thumbnail `json:"thumbnail"`
}

type newsResponse struct {
	Results []newsResult `json:"results"`
}

type suggestResponse struct {
	Results []struct {
		Query string `json:"query"`
	} `json:"results"`
}
