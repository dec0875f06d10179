package capability

// CIMarkers are the environment variables set by known CI platforms.
// Renaming any of them breaks detection on that platform.
var CIMarkers = []string{
	"CI",
	"CONTINUOUS_INTEGRATION",
	"BUILD_NUMBER",
	"RUN_ID",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"TRAVIS",
	"JENKINS_URL",
	"BUILDKITE",
	"TEAMCITY_VERSION",
	"TF_BUILD",
	"APPVEYOR",
	"BITBUCKET_BUILD_NUMBER",
	"DRONE",
	"CODEBUILD_BUILD_ID",
	"SEMAPHORE",
	"NETLIFY",
	"VERCEL",
}

// ansiCIPlatforms render ANSI escapes in their log viewers.
var ansiCIPlatforms = []string{"GITHUB_ACTIONS", "GITLAB_CI", "BUILDKITE", "CIRCLECI", "DRONE", "TF_BUILD"}

// IsCI reports whether any CI marker is set. <prefix>NO_CI forces false.
func IsCI(lookup LookupFunc, prefix string) bool {
	if enabled(lookup, prefix+"NO_CI") {
		return false
	}
	for _, key := range CIMarkers {
		if v, ok := Bool(lookup, key); ok && v {
			return true
		}
	}
	return false
}

func ciRendersANSI(lookup LookupFunc) bool {
	for _, key := range ansiCIPlatforms {
		if v, ok := Bool(lookup, key); ok && v {
			return true
		}
	}
	return false
}
