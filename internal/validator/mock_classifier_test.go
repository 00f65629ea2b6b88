package validator_test

import (
	"context"

	"go.uber.org/mock/gomock"

	"github.com/dronewatch/dronewatch/internal/llmclassifier"
)

// MockClassifier is a hand-written gomock mock for llmclassifier.Classifier,
// in the shape mockgen would generate — following the teacher's own
// abc-service/internal/handler's MockItemService pattern, since no
// generated mock package for this interface exists in the pack.
type MockClassifier struct {
	ctrl     *gomock.Controller
	recorder *MockClassifierRecorder
}

type MockClassifierRecorder struct {
	mock *MockClassifier
}

func NewMockClassifier(ctrl *gomock.Controller) *MockClassifier {
	m := &MockClassifier{ctrl: ctrl}
	m.recorder = &MockClassifierRecorder{mock: m}
	return m
}

func (m *MockClassifier) EXPECT() *MockClassifierRecorder {
	return m.recorder
}

func (m *MockClassifier) Classify(ctx context.Context, title, body, lang string) (llmclassifier.Verdict, error) {
	ret := m.ctrl.Call(m, "Classify", ctx, title, body, lang)
	err, _ := ret[1].(error)
	return ret[0].(llmclassifier.Verdict), err
}

func (mr *MockClassifierRecorder) Classify(ctx, title, body, lang any) *gomock.Call {
	return mr.mock.ctrl.RecordCall(mr.mock, "Classify", ctx, title, body, lang)
}
