package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTag(t *testing.T) {
	tests := []struct {
		name      string
		branch    Branch
		qualifier string
		kind      QualifierKind
		target    DeployTarget
		want      string
		wantErr   error
	}{
		{
			name:   "develop to test host",
			branch: BranchDevelop,
			kind:   QualifierTicket,
			target: TargetTest,
			want:   "develop_latest",
		},
		{
			name:      "develop to test host ignores qualifier",
			branch:    BranchDevelop,
			qualifier: "SC-1",
			target:    TargetTest,
			want:      "develop_latest",
		},
		{
			name:   "develop to team host without qualifier",
			branch: BranchDevelop,
			target: TargetTeam,
			want:   "develop_latest",
		},
		{
			name:      "develop to team host with ticket",
			branch:    BranchDevelop,
			qualifier: "sc-42",
			kind:      QualifierTicket,
			target:    TargetTeam,
			want:      "develop_SC-42_latest",
		},
		{
			name:      "hotfix ticket is upper-cased",
			branch:    BranchHotfix,
			qualifier: "abc123",
			kind:      QualifierTicket,
			target:    TargetTeam,
			want:      "hotfix_ABC123_latest",
		},
		{
			name:      "feature ticket is upper-cased",
			branch:    BranchFeature,
			qualifier: "sc-1234",
			kind:      QualifierTicket,
			target:    TargetTeam,
			want:      "feature_SC-1234_latest",
		},
		{
			name:      "release version is lower-cased",
			branch:    BranchRelease,
			qualifier: "V2",
			kind:      QualifierVersion,
			target:    TargetTeam,
			want:      "release_v2_latest",
		},
		{
			name:      "master version is lower-cased",
			branch:    BranchMaster,
			qualifier: "V27.3.0",
			kind:      QualifierVersion,
			target:    TargetTeam,
			want:      "master_v27.3.0_latest",
		},
		{
			name:      "branch prefix is lower-cased",
			branch:    Branch("HOTFIX"),
			qualifier: "x1",
			kind:      QualifierTicket,
			target:    TargetTeam,
			want:      "hotfix_X1_latest",
		},
		{
			name:    "unknown branch",
			branch:  Branch("bugfix"),
			target:  TargetTeam,
			wantErr: ErrInvalidBranch,
		},
		{
			name:    "empty branch",
			branch:  Branch(""),
			target:  TargetTeam,
			wantErr: ErrInvalidBranch,
		},
		{
			name:    "release without version",
			branch:  BranchRelease,
			kind:    QualifierVersion,
			target:  TargetTeam,
			wantErr: ErrMissingQualifier,
		},
		{
			name:      "hotfix with blank ticket",
			branch:    BranchHotfix,
			qualifier: "   ",
			target:    TargetTeam,
			wantErr:   ErrMissingQualifier,
		},
		{
			name:      "feature to test host",
			branch:    BranchFeature,
			qualifier: "SC-1",
			target:    TargetTest,
			wantErr:   ErrUnsupportedTarget,
		},
		{
			name:      "master to test host",
			branch:    BranchMaster,
			qualifier: "v1",
			kind:      QualifierVersion,
			target:    TargetTest,
			wantErr:   ErrUnsupportedTarget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTag(tt.branch, tt.qualifier, tt.kind, tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveTag_InvalidBranches(t *testing.T) {
	for _, b := range []string{"bugfix", "main", "dev", "feature/", "release-1", "latest"} {
		_, err := ResolveTag(Branch(b), "x", QualifierTicket, TargetTeam)
		assert.ErrorIs(t, err, ErrInvalidBranch, "branch %q", b)
	}
}

func TestBranch_QualifierKind(t *testing.T) {
	assert.Equal(t, QualifierVersion, BranchRelease.QualifierKind())
	assert.Equal(t, QualifierVersion, BranchMaster.QualifierKind())
	assert.Equal(t, QualifierTicket, BranchFeature.QualifierKind())
	assert.Equal(t, QualifierTicket, BranchHotfix.QualifierKind())
	assert.Equal(t, QualifierTicket, BranchDevelop.QualifierKind())
	assert.False(t, BranchDevelop.RequiresQualifier())
	assert.True(t, BranchFeature.RequiresQualifier())
}

func TestParseDeployTarget(t *testing.T) {
	target, err := ParseDeployTarget("TEST")
	require.NoError(t, err)
	assert.Equal(t, TargetTest, target)

	target, err = ParseDeployTarget("team")
	require.NoError(t, err)
	assert.Equal(t, TargetTeam, target)

	_, err = ParseDeployTarget("staging")
	assert.ErrorIs(t, err, ErrUnsupportedTarget)
}
