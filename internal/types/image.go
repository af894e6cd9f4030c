package types

// ImageFile is a stored image as returned by image search.
type ImageFile struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

type UploadResult struct {
	Success   bool   `json:"success"`
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Thumbnail string `json:"thumbnail,omitempty"`
}
