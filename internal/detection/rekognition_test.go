package detection

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"nutriscan/internal/services"
)

type fakeRekognition struct {
	input *rekognition.DetectLabelsInput
	out   *rekognition.DetectLabelsOutput
	err   error
}

func (f *fakeRekognition) DetectLabels(_ context.Context, in *rekognition.DetectLabelsInput, _ ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error) {
	f.input = in
	return f.out, f.err
}

func TestRekognitionNormalizesConfidence(t *testing.T) {
	fake := &fakeRekognition{out: &rekognition.DetectLabelsOutput{Labels: []types.Label{
		{Name: aws.String("Noodles"), Confidence: aws.Float32(87.5)},
		{Name: aws.String(""), Confidence: aws.Float32(99)},
	}}}
	r := newRekognitionWithClient(fake, 0)

	got, err := r.Classify(context.Background(), []byte("img"), MinConfidence)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(got) != 1 || got[0].Label != "Noodles" || got[0].Confidence != 0.875 {
		t.Fatalf("unexpected detections %+v", got)
	}
	if aws.ToFloat32(fake.input.MinConfidence) != 40 {
		t.Fatalf("expected percent threshold 40, got %v", aws.ToFloat32(fake.input.MinConfidence))
	}
	if aws.ToInt32(fake.input.MaxLabels) != 10 {
		t.Fatalf("expected default max labels 10, got %v", aws.ToInt32(fake.input.MaxLabels))
	}
}

func TestRekognitionWrapsErrors(t *testing.T) {
	r := newRekognitionWithClient(&fakeRekognition{err: errors.New("throttled")}, 5)
	if _, err := r.Classify(context.Background(), []byte("img"), MinConfidence); !errors.Is(err, services.ErrRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
}
