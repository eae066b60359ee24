package shared

type ExerciseArgs struct {
	Name string
}

type ViewExerciseArgs struct {
	Name  string
	Lines [][]int
}
