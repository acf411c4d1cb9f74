package detection

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"nutriscan/internal/services"
)

// rekognitionAPI is the subset of the Rekognition client the backend calls.
type rekognitionAPI interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// Rekognition labels images with AWS Rekognition DetectLabels. Rekognition
// reports confidence as a percentage; results are normalized to 0..1.
type Rekognition struct {
	client    rekognitionAPI
	maxLabels int32
}

// NewRekognition loads the default AWS credential chain for region.
func NewRekognition(ctx context.Context, region string, maxLabels int) (*Rekognition, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region = strings.TrimSpace(region); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "detection", "load aws config", "", err)
	}
	return newRekognitionWithClient(rekognition.NewFromConfig(cfg), maxLabels), nil
}

func newRekognitionWithClient(client rekognitionAPI, maxLabels int) *Rekognition {
	if maxLabels <= 0 {
		maxLabels = 10
	}
	return &Rekognition{client: client, maxLabels: int32(maxLabels)}
}

func (r *Rekognition) Name() string { return "rekognition" }

func (r *Rekognition) Classify(ctx context.Context, image []byte, minConfidence float64) ([]Detection, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(r.maxLabels),
		MinConfidence: aws.Float32(float32(minConfidence * 100)),
	})
	if err != nil {
		return nil, services.Wrap(services.ErrRemote, "detection", "rekognition detect labels", "", err)
	}
	detections := make([]Detection, 0, len(out.Labels))
	for _, label := range out.Labels {
		name := strings.TrimSpace(aws.ToString(label.Name))
		if name == "" {
			continue
		}
		detections = append(detections, Detection{
			Label:      name,
			Confidence: float64(aws.ToFloat32(label.Confidence)) / 100,
		})
	}
	return detections, nil
}
