package browser

// DOM selectors for the site's rendered profile pages. The site changes
// its markup often; update these when collection starts returning nothing.
const (
	// AuthMarker only renders for a signed-in session
	AuthMarker = `div[data-testid="primaryColumn"]`

	// ItemContainer wraps one rendered post
	ItemContainer = `article[data-testid="tweet"]`

	ItemPermalink = `a[href*="/status/"]`
	ItemAuthor    = `div[data-testid="User-Name"]`
	ItemText      = `div[data-testid="tweetText"]`
	ItemTimestamp = `time[datetime]`
	ItemPhoto     = `div[data-testid="tweetPhoto"] img[src]`
)
