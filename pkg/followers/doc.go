// Package followers implements the two operations of the viewer: Submit
// stores the followers of one account as the Follower List, and
// BuildReport turns that list into rows sorted by follower count.
package followers
