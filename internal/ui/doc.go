// Package ui implements the loupe terminal interface with Bubble Tea.
//
// There are two views. The listing shows one page-cache feed as a list or a
// grid and grows it as the selection nears the end. The detail view shows one
// photo and steps through the navigation queue with the arrow keys.
//
// Background work reaches the program in two ways: commands return their
// result as a message, and the navigation queue and controller post to an
// event channel that waitForEvent drains one message at a time.
//
// Every change to the listing's loaded set is handed to the queue
// (syncNavigation), so opening a photo always navigates in the order the
// listing shows.
package ui
