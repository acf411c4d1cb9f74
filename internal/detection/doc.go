// Package detection names the product in a photo using an object-detection
// classifier.
//
// The Resolver applies a fixed minimum confidence and keeps only the single
// best label. Classifier backends are interchangeable: an HTTP inference
// sidecar (a YOLO server answering /predict), AWS Rekognition, a Vertex AI
// Gemini model, or a disabled backend that never detects anything. Backend
// failures are logged and reported as "no detection" so the caller can move
// on to manual entry.
package detection
