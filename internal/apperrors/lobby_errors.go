package apperrors

var (
	// Parties
	ErrPartyNotFound        = NotFound("party_not_found", "Party not found")
	ErrPartyGone            = NotFound("party_gone", "Party no longer exists")
	ErrNotInParty           = NotFound("not_in_party", "You are not in a party")
	ErrNotPartyMember       = NotFound("not_in_party", "That player is not in your party")
	ErrFriendNotInParty     = NotFound("friend_not_in_party", "Friend is not in a party")
	ErrKickNotLeader        = Unauthorized("not_leader", "Only party leader can kick members")
	ErrPromoteNotLeader     = Unauthorized("not_leader", "Only party leader can promote members")
	ErrNotAdmin             = Unauthorized("not_admin", "Admin privileges required")
	ErrAlreadyInParty       = AlreadyExists("already_in_party", "You are already in a party. Leave first.")
	ErrUserAlreadyInParty   = AlreadyExists("already_in_party", "User is already in a party")
	ErrFriendInAnotherParty = AlreadyExists("already_in_party", "This friend is already in another party")
	ErrAlreadyInYourParty   = AlreadyExists("already_in_your_party", "This friend is already in your party")
	ErrAlreadyMember        = AlreadyExists("already_member", "Already in this party")
	ErrCannotKickSelf       = InvalidArg("invalid_request", "Cannot kick yourself. Use leave.")
	ErrCannotKickLeader     = InvalidArg("invalid_request", "The party leader cannot be kicked")
	ErrCannotInviteSelf     = InvalidArg("invalid_request", "You cannot invite yourself")
	ErrInvitesDisabled      = FailedPrecondition("invites_disabled", "This user is not accepting party invites")
	ErrPartyConflict        = New(CodeConflict, "party_conflict", "The party changed while updating, try again")

	// Chat
	ErrEmptyMessage   = InvalidArg("invalid_message", "Message cannot be empty")
	ErrMessageTooLong = InvalidArg("invalid_message", "Message is too long")

	// Notifications
	ErrNotificationNotFound = NotFound("notification_not_found", "Notification not found")
	ErrInvalidInvite        = InvalidArg("invalid_invite", "Invalid party invitation")
	ErrInvalidJoinRequest   = InvalidArg("invalid_join_request", "Invalid party join request")
	ErrAcceptNotLeader      = Unauthorized("not_leader", "Only party leader can accept join requests")
	ErrNotActionable        = InvalidArg("invalid_request", "This notification cannot be accepted")

	// Friends and users
	ErrUserNotFound       = NotFound("user_not_found", "User not found")
	ErrUsernameTaken      = AlreadyExists("username_taken", "Username is already taken")
	ErrCannotAddSelf      = InvalidArg("cannot_add_self", "You cannot send a friend request to yourself")
	ErrRequestsDisabled   = FailedPrecondition("requests_disabled", "This user is not accepting friend requests")
	ErrAlreadyFriends     = AlreadyExists("already_friends", "You are already friends with this user")
	ErrRequestAlreadySent = AlreadyExists("request_already_sent", "Friend request already sent")
	ErrRequestNotFound    = NotFound("request_not_found", "Request not found")
	ErrInvalidUsername    = InvalidArg("invalid_username", "Username must be 3-20 characters")
	ErrInvalidDisplayName = InvalidArg("invalid_display_name", "Display name must be 1-30 characters")
	ErrInvalidStatus      = InvalidArg("invalid_status", "Unknown status")
	ErrInvalidAppearance  = InvalidArg("invalid_status", "Unknown appearance status")
)

