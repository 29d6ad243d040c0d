package services

// Gallery is the state of a product's image viewer: the image shown large
// and the ordered thumbnail list.
type Gallery struct {
	Main   string   `json:"main"`
	Images []string `json:"images"`
}

// NewGallery returns the initial gallery for images, showing the first one.
func NewGallery(images []string) Gallery {
	g := Gallery{Images: append([]string(nil), images...)}
	if len(images) > 0 {
		g.Main = images[0]
	}
	return g
}

// Select returns the gallery after the thumbnail clicked was chosen. The
// clicked image and the current main image trade places in the list and
// clicked becomes main. Clicking the current main image or an image that is
// not in the list changes nothing. If the main image is missing from the
// list, only the clicked position is overwritten with it.
//
// The receiver is never modified.
func (g Gallery) Select(clicked string) Gallery {
	next := Gallery{Main: g.Main, Images: append([]string(nil), g.Images...)}
	if clicked == g.Main {
		return next
	}

	clickedIdx := indexOf(next.Images, clicked)
	if clickedIdx < 0 {
		return next
	}
	mainIdx := indexOf(next.Images, g.Main)

	next.Images[clickedIdx] = g.Main
	if mainIdx >= 0 {
		next.Images[mainIdx] = clicked
	}
	next.Main = clicked
	return next
}

func indexOf(images []string, image string) int {
	for i, img := range images {
		if img == image {
			return i
		}
	}
	return -1
}
