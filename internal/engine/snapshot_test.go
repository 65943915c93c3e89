package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbita-hq/feedback-engine/internal/domain"
)

const sampleSnapshot = `
survey:
  id: sv1
  name: Q3 Leadership Review
  trait_weights:
    - id: leadership
      weight_percent: 60
    - id: communication
      weight_percent: 40
traits:
  - id: leadership
    name: Leadership
    items:
      - id: i1
        prompt: Sets clear direction
        type: rating
      - id: i2
        prompt: Open ended feedback
        type: text
  - id: communication
    name: Communication
    items:
      - id: i3
        prompt: Communicates decisions
        type: rating
        scale: {min: 0, max: 10}
subjects:
  - id: s1
    panel:
      - respondent_id: r1
        category: self
        weight_percent: 20
      - respondent_id: r2
        category: Peer
        weight_percent: 80
responses:
  - subject_id: s1
    respondent_id: r1
    item_id: i1
    number: 4
  - subject_id: s1
    respondent_id: r2
    item_id: i2
    text: writes well
`

// TestLoadSnapshot verifies parsing and the domain conversions.
func TestLoadSnapshot(t *testing.T) {
	snap, err := LoadSnapshot(strings.NewReader(sampleSnapshot))
	require.NoError(t, err)

	assert.Equal(t, "sv1", snap.Survey.ID)
	assert.Equal(t, []string{"s1"}, snap.SubjectIDs())

	survey := snap.DomainSurvey()
	assert.Equal(t, "Q3 Leadership Review", survey.Name)
	assert.Equal(t, domain.SurveyClosed, survey.Status)
	require.Len(t, survey.TraitWeights, 2)
	assert.Equal(t, 60, survey.TraitWeights[0].WeightPercent)

	traits := snap.DomainTraits()
	require.Len(t, traits, 2)
	assert.Equal(t, "leadership", traits[0].Items[0].TraitID,
		"items must be stamped with their owning trait")
	require.NotNil(t, traits[1].Items[0].Scale)
	assert.Equal(t, 10.0, traits[1].Items[0].Scale.Max)

	panel := snap.DomainPanel("s1")
	require.Len(t, panel, 2)
	assert.Equal(t, "Peer", panel[1].Category)

	responses, err := snap.DomainResponses("s1")
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, domain.KindNumber, responses[0].Value.Kind)
	assert.Equal(t, "leadership", responses[0].TraitID)
	assert.Equal(t, domain.KindText, responses[1].Value.Kind)

	assert.Nil(t, snap.DomainPanel("unknown"))
}

// TestLoadSnapshotRejectsMalformed verifies validation failures.
func TestLoadSnapshotRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing survey id",
			yaml: `
survey:
  trait_weights: [{id: a, weight_percent: 100}]
traits: [{id: a, items: [{id: i1, type: rating}]}]
subjects: [{id: s1, panel: [{respondent_id: r1, category: self}]}]
`,
		},
		{
			name: "bad item type",
			yaml: `
survey:
  id: sv1
  trait_weights: [{id: a, weight_percent: 100}]
traits: [{id: a, items: [{id: i1, type: slider}]}]
subjects: [{id: s1, panel: [{respondent_id: r1, category: self}]}]
`,
		},
		{
			name: "no subjects",
			yaml: `
survey:
  id: sv1
  trait_weights: [{id: a, weight_percent: 100}]
traits: [{id: a, items: [{id: i1, type: rating}]}]
subjects: []
`,
		},
		{
			name: "unknown field",
			yaml: "servey: {id: sv1}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSnapshot(strings.NewReader(tt.yaml))
			require.Error(t, err)
		})
	}
}

// TestSnapshotResponseWithoutValue verifies a response carrying no
// value field is reported during conversion.
func TestSnapshotResponseWithoutValue(t *testing.T) {
	yaml := strings.Replace(sampleSnapshot, "    number: 4\n", "", 1)

	snap, err := LoadSnapshot(strings.NewReader(yaml))
	require.NoError(t, err)

	_, err = snap.DomainResponses("s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no value set")
}
