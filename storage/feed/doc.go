/*
Package feed defines epoch feeds.

An epoch feed lets a user publish a chronological series of updates about
a particular topic on a content addressed store, with no sequence counter
and no coordinator. A reader only needs the topic and the publisher's
account to find the last update made at or before any given date.

Every update lives in its own chunk whose address is derived from the feed
and a time slot, its epoch (see the lookup package):

	identifier = H(topic|epochID)
	updateAddr = H(identifier|account)

where H is the Keccak-256 hash function and epochID is the binary identity
of the epoch.

The chunk payload is an 8 byte little endian unix timestamp in seconds
followed by the update content, at most 4096 bytes in total:

	payload = timestamp|content

Looking up an update works in three steps. An offline guess picks the
epoch that spans the requested date, starting from a caller supplied hint
when one is given. The store is then probed from that epoch, moving to the
left sibling or up to the parent until an update not newer than the date
turns up. Finally the search walks down from that update, one level at a
time, while a closer update exists.

Signing the update into a single owner chunk and uploading it are left to
the caller.
*/
package feed
