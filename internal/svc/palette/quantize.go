package palette

import (
	"image"
	"image/color"
	"sort"
)

// Quantizer reduces an image to at most max representative colors, most
// prevalent first. Implementations must be deterministic.
type Quantizer interface {
	Palette(img image.Image, max int) []RGB
}

const (
	sigbits   = 5
	rshift    = 8 - sigbits
	cells     = 1 << sigbits
	histoSize = 1 << (3 * sigbits)

	maxIterations      = 1000
	fractByPopulations = 0.75

	minAlpha   = 125
	nearWhite  = 250
	maxPalette = 256
)

// MedianCut is a modified median cut quantizer over a 5 bit per channel histogram.
//
// Boxes are first split by pixel population until three quarters of the
// requested colors exist, then by population times volume so that sparse but
// wide regions of the color space still get a color.
type MedianCut struct {
	// Quality is the pixel sampling step; 1 reads every pixel
	Quality int
}

func (q MedianCut) Palette(img image.Image, max int) []RGB {
	return quantize(q.histogram(img), max)
}

// histogram samples every Quality-th pixel in row order, skipping transparent and near-white pixels
func (q MedianCut) histogram(img image.Image) []int {
	step := q.Quality
	if step < 1 {
		step = 1
	}

	histo := make([]int, histoSize)

	b := img.Bounds()

	w, n := b.Dx(), b.Dx()*b.Dy()
	if n <= 0 {
		return histo
	}

	for i := 0; i < n; i += step {
		c := color.NRGBAModel.Convert(img.At(b.Min.X+i%w, b.Min.Y+i/w)).(color.NRGBA)

		if c.A < minAlpha {
			continue
		}

		if c.R > nearWhite && c.G > nearWhite && c.B > nearWhite {
			continue
		}

		histo[cellIndex(int(c.R)>>rshift, int(c.G)>>rshift, int(c.B)>>rshift)]++
	}

	return histo
}

func cellIndex(r, g, b int) int {
	return r<<(2*sigbits) + g<<sigbits + b
}

func quantize(histo []int, max int) []RGB {
	if max < 1 {
		return nil
	}

	if max > maxPalette {
		max = maxPalette
	}

	root := newBox(histo, [3]int{}, [3]int{cells - 1, cells - 1, cells - 1})
	if root == nil {
		return nil
	}

	boxes := []*vbox{root}

	boxes = splitBoxes(histo, boxes, int(fractByPopulations*float64(max)), func(b *vbox) int {
		return b.count
	})
	boxes = splitBoxes(histo, boxes, max, func(b *vbox) int {
		return b.count * b.volume()
	})

	sort.SliceStable(boxes, func(i, j int) bool {
		if boxes[i].count != boxes[j].count {
			return boxes[i].count > boxes[j].count
		}

		return boxes[i].volume() > boxes[j].volume()
	})

	out := make([]RGB, len(boxes))
	for i, b := range boxes {
		out[i] = b.average(histo)
	}

	return out
}

// splitBoxes repeatedly splits the splittable box with the highest priority
// until target boxes exist. Ties go to the box that was created first.
func splitBoxes(histo []int, boxes []*vbox, target int, priority func(*vbox) int) []*vbox {
	for i := 0; len(boxes) < target && i < maxIterations; i++ {
		best := -1

		for j, b := range boxes {
			if b.single() {
				continue
			}

			if best < 0 || priority(b) > priority(boxes[best]) {
				best = j
			}
		}

		if best < 0 {
			break
		}

		left, right := boxes[best].split(histo)
		boxes[best] = left
		boxes = append(boxes, right)
	}

	return boxes
}

// vbox is an axis aligned box of histogram cells, always shrunk to the cells it populates
type vbox struct {
	lo, hi [3]int
	count  int
}

// newBox returns the tight box of populated cells within [lo, hi], or nil when it holds no pixels
func newBox(histo []int, lo, hi [3]int) *vbox {
	b := &vbox{
		lo: [3]int{cells, cells, cells},
		hi: [3]int{-1, -1, -1},
	}

	for r := lo[0]; r <= hi[0]; r++ {
		for g := lo[1]; g <= hi[1]; g++ {
			for bl := lo[2]; bl <= hi[2]; bl++ {
				n := histo[cellIndex(r, g, bl)]
				if n == 0 {
					continue
				}

				b.count += n

				c := [3]int{r, g, bl}
				for d := 0; d < 3; d++ {
					if c[d] < b.lo[d] {
						b.lo[d] = c[d]
					}
					if c[d] > b.hi[d] {
						b.hi[d] = c[d]
					}
				}
			}
		}
	}

	if b.count == 0 {
		return nil
	}

	return b
}

func (b *vbox) width(d int) int {
	return b.hi[d] - b.lo[d] + 1
}

func (b *vbox) volume() int {
	return b.width(0) * b.width(1) * b.width(2)
}

func (b *vbox) single() bool {
	return b.volume() == 1
}

func (b *vbox) sum(histo []int, lo, hi [3]int) int {
	n := 0

	for r := lo[0]; r <= hi[0]; r++ {
		for g := lo[1]; g <= hi[1]; g++ {
			for bl := lo[2]; bl <= hi[2]; bl++ {
				n += histo[cellIndex(r, g, bl)]
			}
		}
	}

	return n
}

// split cuts the box across its widest axis near the population median.
// Both halves always hold pixels since the box is tight.
func (b *vbox) split(histo []int) (*vbox, *vbox) {
	dim := 0
	for d := 1; d < 3; d++ {
		if b.width(d) > b.width(dim) {
			dim = d
		}
	}

	width := b.width(dim)

	partial := make([]int, width)
	total := 0

	for i := 0; i < width; i++ {
		lo, hi := b.lo, b.hi
		lo[dim], hi[dim] = b.lo[dim]+i, b.lo[dim]+i

		total += b.sum(histo, lo, hi)
		partial[i] = total
	}

	median := 0
	for partial[median]*2 <= total {
		median++
	}

	// cut into the larger side, halfway between the median and the edge
	var cut int

	left, right := median, width-1-median
	if left <= right {
		cut = minInt(width-2, int(float64(median)+float64(right)/2))
	} else {
		cut = maxInt(0, int(float64(median-1)-float64(left)/2))
	}

	hi1 := b.hi
	hi1[dim] = b.lo[dim] + cut

	lo2 := b.lo
	lo2[dim] = b.lo[dim] + cut + 1

	return newBox(histo, b.lo, hi1), newBox(histo, lo2, b.hi)
}

// average is the population weighted center of the box
func (b *vbox) average(histo []int) RGB {
	const mult = 1 << rshift

	var (
		total            int
		rsum, gsum, bsum float64
	)

	for r := b.lo[0]; r <= b.hi[0]; r++ {
		for g := b.lo[1]; g <= b.hi[1]; g++ {
			for bl := b.lo[2]; bl <= b.hi[2]; bl++ {
				n := histo[cellIndex(r, g, bl)]
				if n == 0 {
					continue
				}

				total += n
				rsum += float64(n) * (float64(r) + 0.5) * mult
				gsum += float64(n) * (float64(g) + 0.5) * mult
				bsum += float64(n) * (float64(bl) + 0.5) * mult
			}
		}
	}

	t := float64(total)

	return RGB{uint8(rsum / t), uint8(gsum / t), uint8(bsum / t)}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}

	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}
