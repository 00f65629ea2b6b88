package evidence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dronewatch/dronewatch/internal/evidence"
	"github.com/dronewatch/dronewatch/internal/models"
)

func TestRecompute_NoSources(t *testing.T) {
	assert.Equal(t, models.EvidenceUnconfirmed, evidence.Recompute(nil))
}

func TestRecompute_SingleOfficial(t *testing.T) {
	score := evidence.Recompute([]evidence.SourceRef{{TrustWeight: models.TrustOfficial}})
	assert.Equal(t, models.EvidenceOfficial, score)
}

func TestRecompute_TwoVerifiedMediaSources(t *testing.T) {
	score := evidence.Recompute([]evidence.SourceRef{
		{TrustWeight: models.TrustVerifiedMedia},
		{TrustWeight: models.TrustVerifiedMedia},
	})
	assert.Equal(t, models.EvidenceVerified, score)
}

func TestRecompute_SingleVerifiedWithOfficialQuote(t *testing.T) {
	score := evidence.Recompute([]evidence.SourceRef{
		{TrustWeight: models.TrustVerifiedMedia, HasOfficialQuote: true},
	})
	assert.Equal(t, models.EvidenceVerified, score)
}

func TestRecompute_SingleVerifiedWithoutQuote(t *testing.T) {
	score := evidence.Recompute([]evidence.SourceRef{
		{TrustWeight: models.TrustVerifiedMedia},
	})
	assert.Equal(t, models.EvidenceReported, score)
}

func TestRecompute_MediaOnly(t *testing.T) {
	score := evidence.Recompute([]evidence.SourceRef{{TrustWeight: models.TrustMedia}})
	assert.Equal(t, models.EvidenceReported, score)
}

func TestRecompute_SocialOnly(t *testing.T) {
	score := evidence.Recompute([]evidence.SourceRef{{TrustWeight: models.TrustSocialUnknown}})
	assert.Equal(t, models.EvidenceUnconfirmed, score)
}
