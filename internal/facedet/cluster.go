package facedet

import (
	"image"
	"sort"

	pigo "github.com/esimov/pigo/core"
)

// groupDetections merges raw cascade windows into face boxes. A window below
// minQuality is discarded outright. The remaining windows are greedily
// clustered by IoU against the highest-quality window of each cluster, and a
// cluster only becomes a face when it gathers at least minNeighbors windows.
func groupDetections(raw []pigo.Detection, minQuality float32, overlap float64, minNeighbors int) []image.Rectangle {
	kept := make([]pigo.Detection, 0, len(raw))
	for _, det := range raw {
		if det.Q >= minQuality {
			kept = append(kept, det)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	// Seed clusters from the strongest windows first.
	sort.Slice(kept, func(i, j int) bool { return kept[i].Q > kept[j].Q })

	type cluster struct {
		seed    image.Rectangle // rect of the strongest member
		members int
	}
	var clusters []cluster

next:
	for _, det := range kept {
		rect := detectionRect(det)
		for i := range clusters {
			if iou(rect, clusters[i].seed) >= overlap {
				clusters[i].members++
				continue next
			}
		}
		clusters = append(clusters, cluster{seed: rect, members: 1})
	}

	if minNeighbors < 1 {
		minNeighbors = 1
	}
	var boxes []image.Rectangle
	for _, c := range clusters {
		if c.members >= minNeighbors {
			boxes = append(boxes, c.seed)
		}
	}
	return boxes
}

// detectionRect converts pigo's center+scale detection into a bounding box.
func detectionRect(det pigo.Detection) image.Rectangle {
	half := det.Scale / 2
	return image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half)
}

// iou computes intersection-over-union for two rectangles.
func iou(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	interArea := float64(inter.Dx() * inter.Dy())
	union := float64(a.Dx()*a.Dy()+b.Dx()*b.Dy()) - interArea
	if union <= 0 {
		return 0
	}
	return interArea / union
}
