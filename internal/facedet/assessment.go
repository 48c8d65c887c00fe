package facedet

import "image"

// ConfidencePerFace is the weight each detected face contributes to the
// assessment confidence. The resulting score is a crude monotonic proxy,
// not a calibrated probability.
const ConfidencePerFace = 0.3

// Assessment reports whether an image appears to contain a face. Absence of
// a face is a soft signal for downstream warnings, never a hard failure.
type Assessment struct {
	FaceDetected bool              `json:"face_detected"`
	FaceCount    int               `json:"face_count"`
	Confidence   float64           `json:"confidence"`
	Boxes        []image.Rectangle `json:"boxes,omitempty"`
}

// FromBoxes builds an assessment from detected bounding boxes, applying the
// count-based confidence formula capped at 1.0.
func FromBoxes(boxes []image.Rectangle) Assessment {
	confidence := float64(len(boxes)) * ConfidencePerFace
	if confidence > 1.0 {
		confidence = 1.0
	}
	return Assessment{
		FaceDetected: len(boxes) > 0,
		FaceCount:    len(boxes),
		Confidence:   confidence,
		Boxes:        boxes,
	}
}

// Optimistic returns the assessment substituted when detection itself is
// unavailable or fails: assume one face with middling confidence so an
// upload is never blocked by a detector outage.
func Optimistic() Assessment {
	return Assessment{
		FaceDetected: true,
		FaceCount:    1,
		Confidence:   0.5,
	}
}
