// Package navigation keeps the ordered list of photo ids the user is paging
// through in the detail view, so prev/next follow the listing they came from.
//
// A listing hands its loaded ids to the Queue with SetContext. The detail
// view asks the Queue for neighbours through a Controller; stepping past the
// last loaded id fetches the next page of that listing on demand. The Queue
// is persisted per terminal session so reopening loupe resumes the same
// order.
package navigation
