package core

import (
	"errors"

	"pkt.systems/xrsession/schema"
)

// noImage marks an index slot that holds no image.
const noImage = -1

// Swapchain tracks which image of a compositor ring the application holds.
//
// Images move acquire → wait → release; the most recently released image is
// the one a composition layer displays.
type Swapchain struct {
	images    ImageSwapchain
	numImages int
	next      int
	acquired  []int
	waited    int
	released  int
}

// NewSwapchain wraps a compositor image ring.
func NewSwapchain(images ImageSwapchain) (*Swapchain, error) {
	if images == nil {
		return nil, errors.New("image swapchain is required")
	}
	n := images.NumImages()
	if n <= 0 {
		return nil, errors.New("image swapchain has no images")
	}
	return &Swapchain{
		images:    images,
		numImages: n,
		waited:    noImage,
		released:  noImage,
	}, nil
}

// NumImages returns the capacity of the ring.
func (sc *Swapchain) NumImages() int {
	return sc.numImages
}

// ReleasedIndex returns the last released image, or -1 when none has been released.
func (sc *Swapchain) ReleasedIndex() int {
	return sc.released
}

// AcquireImage hands the next image in the ring to the application.
func (sc *Swapchain) AcquireImage() (int, error) {
	held := len(sc.acquired)
	if sc.waited != noImage {
		held++
	}
	if held >= sc.numImages {
		return noImage, schema.Errorf(schema.ErrCallOrderInvalid, "acquire image", "all %d images are acquired", sc.numImages)
	}
	index := sc.next
	sc.next = (sc.next + 1) % sc.numImages
	sc.acquired = append(sc.acquired, index)
	return index, nil
}

// WaitImage marks the oldest acquired image as ready for rendering.
func (sc *Swapchain) WaitImage() (int, error) {
	if sc.waited != noImage {
		return noImage, schema.Errorf(schema.ErrCallOrderInvalid, "wait image", "image %d is already waited", sc.waited)
	}
	if len(sc.acquired) == 0 {
		return noImage, schema.Errorf(schema.ErrCallOrderInvalid, "wait image", "no image acquired")
	}
	sc.waited = sc.acquired[0]
	sc.acquired = sc.acquired[1:]
	return sc.waited, nil
}

// ReleaseImage returns the waited image to the compositor for display.
func (sc *Swapchain) ReleaseImage() error {
	if sc.waited == noImage {
		return schema.Errorf(schema.ErrCallOrderInvalid, "release image", "no image waited")
	}
	sc.released = sc.waited
	sc.waited = noImage
	return nil
}
