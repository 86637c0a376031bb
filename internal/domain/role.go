package domain

// RoleSearcher is the role given to every self-registered user.
const RoleSearcher = "searcher"
